package resdesk

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/voyagekit/resdesk/pkg/extract"
	"github.com/voyagekit/resdesk/pkg/logging"
	"github.com/voyagekit/resdesk/pkg/normalize"
	"github.com/voyagekit/resdesk/pkg/store"
	"github.com/voyagekit/resdesk/pkg/validate"
)

// Option is a function that configures a Resdesk instance
type Option func(*config) error

// config holds the injected dependencies of a Resdesk instance. There are no
// hidden singletons: the store and extractor are owned by the caller, who is
// responsible for their teardown.
type config struct {
	store      store.Store
	extractor  extract.Extractor
	validator  *validate.Validator
	normalizer *normalize.Normalizer
	now        func() time.Time
	newID      func() string
	log        *zerolog.Logger
}

func defaultConfig() *config {
	return &config{
		extractor: extract.Fallback{},
		now:       time.Now,
		newID:     uuid.NewString,
		log:       logging.Default(),
	}
}

// WithStore configures the persistence backend. Defaults to an in-memory
// store when unset.
func WithStore(s store.Store) Option {
	return func(c *config) error {
		c.store = s
		return nil
	}
}

// WithExtractor configures the extraction oracle client. Defaults to the
// degraded fallback extractor when unset.
func WithExtractor(e extract.Extractor) Option {
	return func(c *config) error {
		c.extractor = e
		return nil
	}
}

// WithValidator configures the commit-time validator.
func WithValidator(v *validate.Validator) Option {
	return func(c *config) error {
		c.validator = v
		return nil
	}
}

// WithNormalizer configures the value normalizer.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(c *config) error {
		c.normalizer = n
		return nil
	}
}

// WithClock configures the clock used for draft timestamps and, unless
// overridden by WithValidator or WithNormalizer, the validator's stale-date
// check and the normalizer's reservation-number synthesis.
func WithClock(now func() time.Time) Option {
	return func(c *config) error {
		c.now = now
		return nil
	}
}

// WithIDGenerator configures the id source for drafts and reservations.
func WithIDGenerator(fn func() string) Option {
	return func(c *config) error {
		c.newID = fn
		return nil
	}
}

// WithLogger configures the structured logger.
func WithLogger(log *zerolog.Logger) Option {
	return func(c *config) error {
		c.log = log
		return nil
	}
}
