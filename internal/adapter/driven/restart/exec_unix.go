//go:build unix

package restart

import (
	"os"
	"os/exec"
	"syscall"
)

func execProcess(argv []string) error {
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return err
	}
	return syscall.Exec(path, argv, os.Environ())
}
