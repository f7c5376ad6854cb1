package ui

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSpinnerStartStop(t *testing.T) {
	var buf bytes.Buffer
	spinner := NewSpinner(&buf, SpinnerOptions{
		Message:  "Warming up",
		NoColor:  true,
		Interval: 5 * time.Millisecond,
	})

	spinner.Start()
	spinner.Start()
	time.Sleep(30 * time.Millisecond)
	spinner.Stop()
	spinner.Stop()

	assert.Contains(t, buf.String(), "Warming up")
	assert.Contains(t, buf.String(), "\r\033[K")
}

func TestSpinnerUpdateMessage(t *testing.T) {
	var buf bytes.Buffer
	spinner := NewSpinner(&buf, SpinnerOptions{Message: "first", NoColor: true, Interval: 5 * time.Millisecond})

	spinner.Start()
	spinner.UpdateMessage("second")
	time.Sleep(30 * time.Millisecond)
	spinner.Stop()

	assert.Contains(t, buf.String(), "second")
}

func TestWithSpinner(t *testing.T) {
	var buf bytes.Buffer
	err := WithSpinner(&buf, "Generating backend", true, func() error { return nil })
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "✓ Generating backend\n")

	buf.Reset()
	err = WithSpinner(&buf, "Generating storefront", true, func() error { return errors.New("no sources") })
	assert.EqualError(t, err, "no sources")
	assert.Contains(t, buf.String(), "❌ Generating storefront: no sources\n")
}
