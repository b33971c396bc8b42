package app

import "github.com/spf13/pflag"

// CliOptions is implemented by the aggregate options struct an App is
// built with. Complete runs before Validate; both run after config file
// and environment values have been applied to the struct.
type CliOptions interface {
	AddFlags(fs *pflag.FlagSet)
	Complete() error
	Validate() error
}
