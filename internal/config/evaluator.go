package config

// EditorConfig configures the line editor.
type EditorConfig struct {
	// TabWidth is the tab stop used when Tab has nothing to complete.
	TabWidth int `yaml:"tab_width"`
}

// EvaluatorConfig configures the yaegi evaluator.
type EvaluatorConfig struct {
	// EvalTimeout bounds a single submission; "0s" or empty disables it.
	EvalTimeout string `yaml:"eval_timeout"`

	// Unrestricted loads every yaegi stdlib symbol, including os and
	// os/exec. When false only a safe subset of packages is loaded.
	Unrestricted bool `yaml:"unrestricted"`
}

// PreprocessRule rewrites a submitted line before evaluation.
type PreprocessRule struct {
	Pattern string `yaml:"pattern"`
	Replace string `yaml:"replace"`
}

// PreprocessConfig holds the user's rewrite rules, applied in file order
// after the built-in introspection handler.
type PreprocessConfig struct {
	Rules []PreprocessRule `yaml:"rules"`
}
