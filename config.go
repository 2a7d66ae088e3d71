package wellspring

import (
	"io"
	"os"
	"strconv"
	"time"

	"github.com/hyperengineering/wellspring/internal/store"
)

// Config configures the wellspring client.
type Config struct {
	// LocalPath is the path to the SQLite database.
	// If empty, it is derived from Profile.
	LocalPath string

	// Profile selects a separate dataset under the profile root.
	// If empty, resolved as explicit > WELLSPRING_PROFILE env > "default".
	Profile string

	// Location is the IANA time zone used for calendar days (streaks) and
	// heatmap cells. Empty means the system local zone.
	Location string

	// Debug enables verbose logging of store and engine operations.
	Debug bool

	// DebugLogPath is the path to write debug logs.
	// Defaults to stderr if empty.
	DebugLogPath string

	// DebugWriter receives debug logs instead of DebugLogPath when set.
	DebugWriter io.Writer

	// MaxValueBytes caps each persisted preference value.
	// Defaults to DefaultMaxValueBytes.
	MaxValueBytes int

	// DriverMinOccurrences is the minimum tag count for driver analysis.
	// Defaults to 3.
	DriverMinOccurrences int

	// DriverWindow is the driver analysis lookback. Defaults to 28 days.
	DriverWindow time.Duration

	// RecentEntries is how many recent check-ins feed tag relevance for tips.
	// Defaults to 7.
	RecentEntries int

	// Catalog overrides the built-in tip catalog.
	Catalog []Tip

	// Clock supplies "now". Defaults to time.Now.
	Clock func() time.Time
}

// DefaultRecentEntries is the default tag-relevance lookback for tips.
const DefaultRecentEntries = 7

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Profile:              store.DefaultProfile,
		LocalPath:            store.ProfileDBPath(store.DefaultProfile),
		MaxValueBytes:        DefaultMaxValueBytes,
		DriverMinOccurrences: DefaultDriverMinOccurrences,
		DriverWindow:         DefaultDriverWindow,
		RecentEntries:        DefaultRecentEntries,
		Clock:                time.Now,
	}
}

// ConfigFromEnv reads configuration from environment variables.
//
//	WELLSPRING_DB_PATH    → LocalPath
//	WELLSPRING_PROFILE    → Profile
//	WELLSPRING_TZ         → Location
//	WELLSPRING_DEBUG      → Debug (any non-empty value enables)
//	WELLSPRING_DEBUG_LOG  → DebugLogPath
//	WELLSPRING_MAX_VALUE  → MaxValueBytes
func ConfigFromEnv() Config {
	c := Config{
		LocalPath:    os.Getenv("WELLSPRING_DB_PATH"),
		Profile:      os.Getenv(store.ProfileEnvVar),
		Location:     os.Getenv("WELLSPRING_TZ"),
		Debug:        os.Getenv("WELLSPRING_DEBUG") != "",
		DebugLogPath: os.Getenv("WELLSPRING_DEBUG_LOG"),
	}
	if v, err := strconv.Atoi(os.Getenv("WELLSPRING_MAX_VALUE")); err == nil {
		c.MaxValueBytes = v
	}
	return c
}

// Validate checks the configuration for errors.
// Returns *ValidationError for invalid fields.
func (c *Config) Validate() error {
	if c.LocalPath == "" {
		return &ValidationError{Field: "LocalPath", Message: "required: path to SQLite database"}
	}
	if c.Profile != "" {
		if err := store.ValidateProfileID(c.Profile); err != nil {
			return &ValidationError{Field: "Profile", Message: err.Error()}
		}
	}
	if c.Location != "" {
		if _, err := time.LoadLocation(c.Location); err != nil {
			return &ValidationError{Field: "Location", Message: err.Error()}
		}
	}
	if c.MaxValueBytes < 0 {
		return &ValidationError{Field: "MaxValueBytes", Message: "must be non-negative"}
	}
	if c.DriverMinOccurrences < 0 {
		return &ValidationError{Field: "DriverMinOccurrences", Message: "must be non-negative"}
	}
	if c.DriverWindow < 0 {
		return &ValidationError{Field: "DriverWindow", Message: "must be non-negative"}
	}
	if c.RecentEntries < 0 {
		return &ValidationError{Field: "RecentEntries", Message: "must be non-negative"}
	}
	for i := range c.Catalog {
		if err := ValidateTip(&c.Catalog[i]); err != nil {
			return &ValidationError{Field: "Catalog", Message: err.Error()}
		}
	}
	return nil
}

// LoadLocation resolves Location, falling back to time.Local.
func (c *Config) LoadLocation() (*time.Location, error) {
	if c.Location == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Location)
}

// WithDefaults fills in default values for unset fields.
//
// When the profile resolves to "default" and no database exists there yet,
// an existing legacy ./data/checkins.db is copied in and its origin recorded
// in metadata.
func (c Config) WithDefaults() Config {
	defaults := DefaultConfig()

	if c.Profile == "" {
		if resolved, err := store.ResolveProfile(""); err == nil {
			c.Profile = resolved
		} else {
			c.Profile = store.DefaultProfile
		}
	}

	if c.Profile == store.DefaultProfile && c.LocalPath == "" {
		_ = migrateAndSetMetadata("", store.DefaultProfileRoot())
	}

	if c.LocalPath == "" {
		c.LocalPath = store.ProfileDBPath(c.Profile)
	}
	if c.MaxValueBytes == 0 {
		c.MaxValueBytes = defaults.MaxValueBytes
	}
	if c.DriverMinOccurrences == 0 {
		c.DriverMinOccurrences = defaults.DriverMinOccurrences
	}
	if c.DriverWindow == 0 {
		c.DriverWindow = defaults.DriverWindow
	}
	if c.RecentEntries == 0 {
		c.RecentEntries = defaults.RecentEntries
	}
	if c.Clock == nil {
		c.Clock = defaults.Clock
	}
	return c
}

// migrateAndSetMetadata copies a legacy database into the default profile
// and records where it came from. Errors are informational only.
func migrateAndSetMetadata(sourcePath, root string) error {
	result, err := store.MigrateLegacyDatabase(sourcePath, root)
	if err != nil || !result.Migrated {
		return err
	}

	s, err := NewStore(result.DestPath)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	return s.SetMetadata(MetaMigratedFrom, result.SourcePath)
}
