package config

import "github.com/xplshn/tpa/pkg/cli"

// FlagGroups holds the switches registered by SetupFlagGroups until they are
// applied after parsing.
type FlagGroups struct {
	Warnings []cli.FlagGroupEntry
	Features []cli.FlagGroupEntry
	wall     bool
	wnoAll   bool
}

// SetupFlagGroups registers -W<warning>, -F<feature> and -Wall on fs.
func (c *Config) SetupFlagGroups(fs *cli.FlagSet) *FlagGroups {
	g := &FlagGroups{
		Warnings: make([]cli.FlagGroupEntry, WarnCount),
		Features: make([]cli.FlagGroupEntry, FeatCount),
	}

	for i := Warning(0); i < WarnCount; i++ {
		info := c.Warnings[i]
		g.Warnings[i] = cli.FlagGroupEntry{
			Name: info.Name, Usage: info.Description, Default: info.Enabled,
			Enabled: new(bool), Disabled: new(bool),
		}
	}
	for i := Feature(0); i < FeatCount; i++ {
		info := c.Features[i]
		g.Features[i] = cli.FlagGroupEntry{
			Name: info.Name, Usage: info.Description, Default: info.Enabled,
			Enabled: new(bool), Disabled: new(bool),
		}
	}

	fs.Bool(&g.wall, "Wall", "", false, "Enable all warnings")
	fs.Bool(&g.wnoAll, "Wno-all", "", false, "Disable all warnings")
	fs.AddFlagGroup(cli.FlagGroup{Name: "Warning Flags", Prefix: "W", GroupType: "warning", Header: "Available Warnings:", Flags: g.Warnings})
	fs.AddFlagGroup(cli.FlagGroup{Name: "Feature Flags", Prefix: "F", GroupType: "feature", Header: "Available Features:", Flags: g.Features})
	return g
}

// Apply copies the parsed switches into c. Specific switches override
// -Wall and -Wno-all.
func (g *FlagGroups) Apply(c *Config) {
	if g.wall {
		c.SetAllWarnings(true)
	}
	if g.wnoAll {
		c.SetAllWarnings(false)
	}
	for i, e := range g.Warnings {
		if *e.Enabled {
			c.SetWarning(Warning(i), true)
		}
		if *e.Disabled {
			c.SetWarning(Warning(i), false)
		}
	}
	for i, e := range g.Features {
		if *e.Enabled {
			c.SetFeature(Feature(i), true)
		}
		if *e.Disabled {
			c.SetFeature(Feature(i), false)
		}
	}
}
