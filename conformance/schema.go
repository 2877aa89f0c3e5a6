package conformance

// Suite is one YAML file of test programs
type Suite struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Tests       []Case `yaml:"tests"`
}

// Case is a program, the input lines fed to INPUT, and what the run
// must produce
type Case struct {
	Name      string      `yaml:"name"`
	Skip      string      `yaml:"skip,omitempty"`
	ZoneWidth int         `yaml:"zone_width,omitempty"`
	Program   string      `yaml:"program"`
	Input     []string    `yaml:"input,omitempty"`
	Expect    Expectation `yaml:"expect"`
}

// Expectation is checked after the run. Output includes the fault
// messages, which the runner writes like the command line tool does
type Expectation struct {
	Output    string `yaml:"output"`
	Fault     int    `yaml:"fault,omitempty"`      // code of the latched fault, 0 for none
	Warnings  []int  `yaml:"warnings,omitempty"`   // codes of non-fatal faults, in order
	LinkError string `yaml:"link_error,omitempty"` // substring of the link or syntax error
}
