// Package consult loads Prolog source files into a session, optionally
// reloading them as they change on disk.
package consult

import (
	"fmt"
	"os"

	"github.com/brunokim/logic-embed/prolog"
)

// Files reads each path in order and loads its clauses into s. The
// first failure stops the load; the error names the offending file.
func Files(s *prolog.Session, paths ...string) error {
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("consult %s: %w", path, err)
		}
		if err := s.ConsultText(string(src)); err != nil {
			return fmt.Errorf("consult %s: %w", path, err)
		}
	}
	return nil
}
