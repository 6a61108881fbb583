//go:build !linux

package player

import "syscall"

func sysProcAttr() *syscall.SysProcAttr {
	return nil
}
