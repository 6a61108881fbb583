package player

import (
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"buck/logger"
)

// Keepalive is a held helper resource. Release must be safe to call more than once.
type Keepalive interface {
	Release()
}

// KeepaliveFactory acquires a new helper.
type KeepaliveFactory func() (Keepalive, error)

// bluetoothStep is one command of the keepalive cycle and how long to idle after it.
type bluetoothStep struct {
	cmd  string
	wait time.Duration
}

var bluetoothCycle = []bluetoothStep{
	{"scan on", 20 * time.Second},
	{"scan off", 10 * time.Second},
	{"paired-devices", 10 * time.Second},
	{"paired-devices", 10 * time.Second},
}

// BluetoothKeepalive keeps a bluetooth audio sink from powering down while
// playback is paused, by cycling bluetoothctl through scans.
type BluetoothKeepalive struct {
	cmd  *exec.Cmd
	stop chan struct{}
	once sync.Once
}

// NewBluetoothKeepalive returns a factory that starts bluetoothctl from path.
func NewBluetoothKeepalive(path string) KeepaliveFactory {
	return func() (Keepalive, error) {
		cmd := exec.Command(path)
		cmd.SysProcAttr = sysProcAttr()
		stdin, err := cmd.StdinPipe()
		if err != nil {
			return nil, fmt.Errorf("bluetoothctl stdin: %w", err)
		}
		if err := cmd.Start(); err != nil {
			return nil, fmt.Errorf("start bluetoothctl: %w", err)
		}

		k := &BluetoothKeepalive{cmd: cmd, stop: make(chan struct{})}
		go k.loop(stdin)
		go func() { _ = cmd.Wait() }()

		logger.Info("bluetooth keepalive acquired", logger.Component("player-control"))
		return k, nil
	}
}

func (k *BluetoothKeepalive) loop(stdin io.WriteCloser) {
	defer stdin.Close()
	for {
		for _, step := range bluetoothCycle {
			if _, err := io.WriteString(stdin, step.cmd+"\n"); err != nil {
				logger.Warn("bluetoothctl write failed",
					logger.Component("player-control"),
					logger.ErrorField(err))
				return
			}
			select {
			case <-k.stop:
				return
			case <-time.After(step.wait):
			}
		}
	}
}

// Release stops the cycle and kills bluetoothctl.
func (k *BluetoothKeepalive) Release() {
	k.once.Do(func() {
		close(k.stop)
		if k.cmd.Process != nil {
			_ = k.cmd.Process.Kill()
		}
		logger.Info("bluetooth keepalive released", logger.Component("player-control"))
	})
}
