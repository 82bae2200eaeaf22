package dad

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withFakeIGMP6(t *testing.T, contents string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "igmp6")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	old := procNetIGMP6Path
	procNetIGMP6Path = path
	t.Cleanup(func() { procNetIGMP6Path = old })
}

func TestAllNodesMembershipJoinedTrue(t *testing.T) {
	withFakeIGMP6(t, "2       ath0            "+allNodesHex+"     1 0000000C 0000000000000000\n")
	joined, err := allNodesMembershipJoined(2)
	require.NoError(t, err)
	assert.True(t, joined)
}

func TestAllNodesMembershipJoinedFalseForOtherGroup(t *testing.T) {
	withFakeIGMP6(t, "2       ath0            ff0200000000000000000000000000fb     1 0000000C 0000000000000000\n")
	joined, err := allNodesMembershipJoined(2)
	require.NoError(t, err)
	assert.False(t, joined)
}

func TestAllNodesMembershipJoinedFalseForOtherInterface(t *testing.T) {
	withFakeIGMP6(t, "1       lo              "+allNodesHex+"     1 0000000C 0000000000000000\n")
	joined, err := allNodesMembershipJoined(2)
	require.NoError(t, err)
	assert.False(t, joined)
}

func TestAllNodesMembershipJoinedMultipleLines(t *testing.T) {
	withFakeIGMP6(t, ""+
		"1       lo              00000000000000000000000000000001     1 0000000C 0000000000000000\n"+
		"2       ath0            "+allNodesHex+"     2 0000000C 0000000000000000\n")
	joined, err := allNodesMembershipJoined(2)
	require.NoError(t, err)
	assert.True(t, joined)
}

func TestAllNodesMembershipJoinedMissingFile(t *testing.T) {
	old := procNetIGMP6Path
	procNetIGMP6Path = filepath.Join(t.TempDir(), "does-not-exist")
	t.Cleanup(func() { procNetIGMP6Path = old })

	_, err := allNodesMembershipJoined(2)
	require.Error(t, err)
	var transportErr TransportError
	require.ErrorAs(t, err, &transportErr)
}
