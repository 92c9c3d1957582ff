//go:build !unix

package restart

import (
	"os"
	"os/exec"
)

// execProcess starts argv as a child and exits once it finishes, since the
// platform cannot replace the running image.
func execProcess(argv []string) error {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return err
	}
	os.Exit(0)
	return nil
}
