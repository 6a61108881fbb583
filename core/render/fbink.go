package render

import (
	"bytes"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"

	"buck/logger"
)

// Runner executes the rendering utility. wait=false starts it and returns at once.
type Runner func(name string, args []string, wait bool) error

// ExecRunner runs the command with os/exec.
func ExecRunner(name string, args []string, wait bool) error {
	cmd := exec.Command(name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if !wait {
		if err := cmd.Start(); err != nil {
			return err
		}
		go func() { _ = cmd.Wait() }()
		return nil
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return nil
}

// FBInk draws by shelling out to the fbink utility.
type FBInk struct {
	path   string
	assets string
	run    Runner
}

// NewFBInk creates a sink. A nil runner means ExecRunner.
func NewFBInk(path, assetsDir string, run Runner) *FBInk {
	if run == nil {
		run = ExecRunner
	}
	return &FBInk{path: path, assets: assetsDir, run: run}
}

func (f *FBInk) exec(args []string, wait bool) error {
	logger.Debug("fbink", logger.Component("render"), logger.Any("args", args))
	if err := f.run(f.path, args, wait); err != nil {
		logger.Warn("draw failed",
			logger.Component("render"),
			logger.ErrorField(err))
		return err
	}
	return nil
}

// Clear paints the whole screen.
func (f *FBInk) Clear(color string) error {
	return f.exec([]string{"--cls", "--background=" + color}, true)
}

// Fill paints r with color.
func (f *FBInk) Fill(r Rect, color string) error {
	if r.Width <= 0 || r.Height <= 0 {
		return nil
	}
	return f.exec([]string{"--cls", r.String(), "--background=" + color}, true)
}

// DrawText renders s with a TrueType font.
func (f *FBInk) DrawText(s string, t Text) error {
	return f.exec(f.textArgs(s, t), true)
}

func (f *FBInk) textArgs(s string, t Text) []string {
	opts := "size=" + strconv.Itoa(t.Size) +
		",top=" + strconv.Itoa(t.Top) +
		",left=" + strconv.Itoa(t.Left)
	if t.Font != "" {
		opts += ",regular=" + t.Font
	} else {
		style := t.Style
		if style == "" {
			style = "regular"
		}
		opts += ",style=" + style +
			",regular=" + f.asset("Bookerly-Regular.ttf") +
			",bold=" + f.asset("Bookerly-Bold.ttf") +
			",italic=" + f.asset("Bookerly-Italic.ttf") +
			",bolditalic=" + f.asset("Bookerly-BoldItalic.ttf")
	}

	args := []string{"-t", opts, "-C", t.FG, "-B", t.BG}
	if !t.Opaque {
		args = append(args, "--bgless")
	}
	return append(args, s)
}

// DrawImage renders an image file scaled to the screen width and dithered.
func (f *FBInk) DrawImage(path string) error {
	return f.exec([]string{"-g", "file=" + path + ",w=-1,dither"}, true)
}

// Status writes a console-style line near the top of the screen without waiting.
func (f *FBInk) Status(line int, text string) error {
	return f.exec([]string{"-y", strconv.Itoa(line + 1), "-Y", "100", "-C", Gray8, "-S", "2", text}, false)
}

func (f *FBInk) asset(name string) string {
	return filepath.Join(f.assets, name)
}
