package booking

import "strings"

// Channel identifies the sales platform a reservation came through.
type Channel string

// String returns the string representation of a Channel.
func (c Channel) String() string {
	return string(c)
}

// Known sales channels. Provenance strings are vendor-controlled and
// unbounded, so anything we cannot place maps to ChannelOther rather than
// failing the pipeline.
const (
	ChannelNaver      Channel = "naver"
	ChannelMyRealTrip Channel = "myrealtrip"
	ChannelKlook      Channel = "klook"
	ChannelKKday      Channel = "kkday"
	ChannelTripCom    Channel = "trip_com"
	ChannelAgoda      Channel = "agoda"
	ChannelCreatrip   Channel = "creatrip"
	ChannelWaug       Channel = "waug"
	ChannelDirect     Channel = "direct"
	ChannelOther      Channel = "other"
)

// Channels lists every recognized channel tag, in display order.
var Channels = []Channel{
	ChannelNaver,
	ChannelMyRealTrip,
	ChannelKlook,
	ChannelKKday,
	ChannelTripCom,
	ChannelAgoda,
	ChannelCreatrip,
	ChannelWaug,
	ChannelDirect,
	ChannelOther,
}

// channelAliases maps lower-cased vendor spellings (Korean and English) to
// canonical tags. Canonical tags map to themselves so tagging is idempotent.
var channelAliases = map[string]Channel{
	"naver":        ChannelNaver,
	"네이버":          ChannelNaver,
	"네이버예약":        ChannelNaver,
	"smartstore":   ChannelNaver,
	"myrealtrip":   ChannelMyRealTrip,
	"마이리얼트립":       ChannelMyRealTrip,
	"mrt":          ChannelMyRealTrip,
	"klook":        ChannelKlook,
	"클룩":           ChannelKlook,
	"kkday":        ChannelKKday,
	"케이케이데이":       ChannelKKday,
	"trip_com":     ChannelTripCom,
	"trip.com":     ChannelTripCom,
	"ctrip":        ChannelTripCom,
	"트립닷컴":         ChannelTripCom,
	"agoda":        ChannelAgoda,
	"아고다":          ChannelAgoda,
	"creatrip":     ChannelCreatrip,
	"크리에이트립":       ChannelCreatrip,
	"waug":         ChannelWaug,
	"와그":           ChannelWaug,
	"direct":       ChannelDirect,
	"직접예약":         ChannelDirect,
	"전화예약":         ChannelDirect,
	"walk-in":      ChannelDirect,
	"other":        ChannelOther,
	"기타":           ChannelOther,
}

// ParseChannel tags a raw provenance string with a canonical channel.
// Lookup is case-insensitive; unrecognized input falls back to ChannelOther.
func ParseChannel(raw string) Channel {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return ChannelOther
	}
	if ch, ok := channelAliases[key]; ok {
		return ch
	}
	return ChannelOther
}

// IsValidChannel reports whether s is a canonical channel tag.
func IsValidChannel(s string) bool {
	for _, ch := range Channels {
		if string(ch) == s {
			return true
		}
	}
	return false
}
