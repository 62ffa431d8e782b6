package export

import "go.uber.org/multierr"

// Multi fans a cycle out to several exporters. A failing exporter does not
// stop the others from receiving the cycle.
type Multi []Exporter

// Export sends the cycle to every exporter and combines their errors.
func (m Multi) Export(c Cycle) error {
	var err error
	for _, e := range m {
		err = multierr.Append(err, e.Export(c))
	}
	return err
}

// Close closes every exporter.
func (m Multi) Close() error {
	var err error
	for _, e := range m {
		err = multierr.Append(err, e.Close())
	}
	return err
}
