package buildinfo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrite_DefaultsAndSet(t *testing.T) {
	ov, od, oc := BuildVersion, BuildDate, BuildCommit
	t.Cleanup(func() { BuildVersion, BuildDate, BuildCommit = ov, od, oc })

	var buf bytes.Buffer
	BuildVersion, BuildDate, BuildCommit = "", "", ""
	Write(&buf, "check_pgsql")
	require.Equal(t, "check_pgsql version N/A (commit N/A, built N/A)\n", buf.String())

	buf.Reset()
	BuildVersion, BuildDate, BuildCommit = "v1", "2025-09-06", "deadbeef"
	Write(&buf, "check_pgsql")
	require.Equal(t, "check_pgsql version v1 (commit deadbeef, built 2025-09-06)\n", buf.String())
}
