package logging

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestFormatter(t *testing.T) {
	var buf bytes.Buffer
	logger := New("asciidecoder", &buf, logrus.InfoLevel)

	logger.Error("no AsciiCoder.DecodeFiles archive found")
	logger.WithError(errors.New("permission denied")).Errorf("can't create file '%s'", "a.txt")
	logger.WithFields(logrus.Fields{"entries": 2, "compressed": true}).Info("manifest read")
	logger.Debug("hidden")

	assert.Equal(t, "asciidecoder: no AsciiCoder.DecodeFiles archive found\n"+
		"asciidecoder: can't create file 'a.txt': permission denied\n"+
		"asciidecoder: manifest read compressed=true entries=2\n", buf.String())
}

func TestFormatterColor(t *testing.T) {
	f := &Formatter{Prog: "x", Color: true}
	out, err := f.Format(&logrus.Entry{Level: logrus.ErrorLevel, Message: "boom", Data: logrus.Fields{}})
	assert.NoError(t, err)
	assert.Equal(t, colorBold+colorRed+"x:"+colorReset+" boom\n", string(out))
}

func TestCanColor(t *testing.T) {
	assert.False(t, CanColor(&bytes.Buffer{}))

	f, err := os.CreateTemp(t.TempDir(), "log")
	assert.NoError(t, err)
	defer f.Close()
	assert.False(t, CanColor(f))
}
