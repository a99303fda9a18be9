package cfgloader

const defaultConfigDir = "./config"

// Options holds configuration options for Load and MustLoad.
type Options struct {
	// Silent disables printing of the loaded config.
	Silent bool

	// Dir is the directory holding ${ENVIRONMENT}.yaml files.
	Dir string
}

// Option is a functional option for configuring Load behavior.
type Option func(*Options)

// WithSilent disables config logging to stdout.
func WithSilent() Option {
	return func(o *Options) {
		o.Silent = true
	}
}

// WithConfigDir overrides the directory the config file is read from.
// An empty dir keeps the default.
func WithConfigDir(dir string) Option {
	return func(o *Options) {
		if dir != "" {
			o.Dir = dir
		}
	}
}

func buildOptions(opts []Option) Options {
	o := Options{Dir: defaultConfigDir}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
