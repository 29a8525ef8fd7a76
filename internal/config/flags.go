package config

import (
	"flag"
)

// parses CLI flags for the server binary. flags left unset keep the
// environment values.
func ParseServerFlags(args []string) (Flags, error) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	host := fs.String("host", "", "interface to bind (overrides HOST)")
	port := fs.String("port", "", "port to bind (overrides PORT)")

	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}

	return Flags{Host: *host, Port: *port}, nil
}

// applies non-empty flag values on top of cfg
func (c *Config) ApplyFlags(f Flags) error {
	if f.Host != "" {
		c.Host = f.Host
	}

	if f.Port != "" {
		if err := validatePort(f.Port); err != nil {
			return err
		}

		c.Port = f.Port
	}

	return nil
}
