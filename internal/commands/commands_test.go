package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compsec/internal/scoring"
)

func TestScoreCommand(t *testing.T) {
	rootCmd.SetArgs([]string{"score", "--likelihood", "4", "--impact", "5"})
	require.NoError(t, rootCmd.Execute())
}

func TestScoreCommand_OutOfScale(t *testing.T) {
	rootCmd.SetArgs([]string{"score", "--likelihood", "6", "--impact", "1"})
	err := rootCmd.Execute()

	require.Error(t, err)
	var scaleErr *scoring.ScaleError
	assert.ErrorAs(t, err, &scaleErr)
}

func TestImportFramework_NeedsFile(t *testing.T) {
	rootCmd.SetArgs([]string{"import-framework"})
	assert.Error(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"import-framework", "testdata/missing.yaml"})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read framework file")
}
