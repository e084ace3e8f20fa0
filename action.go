package zmigrate

import "github.com/denismitr/zmigrate/migration"

type ActionConfigurator func(a *Action) error

// Action collects the settings of a single run
type Action struct {
	seed         bool
	skipMissing  bool
	versionRange migration.Range
}

// WithSeed runs seed.sql after up.sql, down runs ignore it
func WithSeed() ActionConfigurator {
	return func(a *Action) error {
		a.seed = true
		return nil
	}
}

func WithSkipMissing() ActionConfigurator {
	return func(a *Action) error {
		a.skipMissing = true
		return nil
	}
}

// WithRange limits the run to a "first^last" range, either side may be empty
func WithRange(raw string) ActionConfigurator {
	return func(a *Action) error {
		r, err := migration.ParseRange(raw)
		if err != nil {
			return err
		}

		a.versionRange = r
		return nil
	}
}

func WithVersionRange(r migration.Range) ActionConfigurator {
	return func(a *Action) error {
		a.versionRange = r
		return nil
	}
}

// CreateConfigurators turns plain run settings, as they come from the command line, into configurators
func CreateConfigurators(seed, skipMissing bool, rawRange string) []ActionConfigurator {
	var configurators []ActionConfigurator
	if seed {
		configurators = append(configurators, WithSeed())
	}

	if skipMissing {
		configurators = append(configurators, WithSkipMissing())
	}

	if rawRange != "" {
		configurators = append(configurators, WithRange(rawRange))
	}

	return configurators
}
