package export

import (
	"io"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Summary records how a run ended, written next to the result files.
type Summary struct {
	RunID        string    `yaml:"run_id"`
	GeneratedAt  time.Time `yaml:"generated_at"`
	Center       string    `yaml:"center"`
	State        string    `yaml:"state"`
	FinalRadius  int       `yaml:"final_radius_m"`
	Iterations   int       `yaml:"iterations"`
	Encyclopedia int       `yaml:"encyclopedia_results"`
	Features     int       `yaml:"named_features"`
	AdminFound   bool      `yaml:"admin_found"`
	Files        []string  `yaml:"files,omitempty"`
}

// WriteSummary encodes s as YAML.
func WriteSummary(w io.Writer, s Summary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return eris.Wrap(err, "export: encode summary")
	}
	if err := enc.Close(); err != nil {
		return eris.Wrap(err, "export: close summary encoder")
	}
	return nil
}
