package console

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrefixes(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)

	c.Notice("building %s", "thesis")
	c.Warning("Overfull \\hbox (%dpt too wide)", 12)
	c.Error("%s does not exist", "intro.tex")

	require.Equal(t,
		"building thesis\n"+
			"  - Overfull \\hbox (12pt too wide)\n"+
			"  * intro.tex does not exist\n",
		buf.String())
}

func TestNewNilWriterDefaultsToStdout(t *testing.T) {
	c := New(nil)
	require.NotNil(t, c.out)
}
