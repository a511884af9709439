package cli

import (
	"bufio"
	"bytes"
	"context"
	"image/png"
	"io"
	kikiImage "kiki/pkg/image"
	"kiki/pkg/media"
	"kiki/test"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(stdin io.Reader, args ...string) (stdout, stderr string, err error) {
	var out, errOut bytes.Buffer
	rootCmd := newRootCommand(&rootOpts{})
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)

	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func writeCover(t *testing.T, dir string, width, height int) string {
	t.Helper()
	path := filepath.Join(dir, "cover.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, test.GenerateImage(11, width, height, false)))
	require.NoError(t, f.Close())
	return path
}

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0600))
	return path
}

func TestEmbedExtractRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cover := writeCover(t, dir, 80, 60)
	secret := test.GenerateSeededBytes(5, 1000)
	secretPath := writeFile(t, dir, "secret.bin", secret)
	stego := filepath.Join(dir, "stego.png")

	_, _, err := runCommand(nil, "embed", cover, stego, secretPath, "-k", "hunter2")
	require.NoError(t, err)

	stdout, _, err := runCommand(nil, "extract", stego, "--key", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, secret, []byte(stdout))

	_, _, err = runCommand(nil, "extract", stego, "--key", "hunter3")
	assert.ErrorIs(t, err, kikiImage.ErrIntegrityMismatch)
}

func TestEmbedFromStdinExtractToFile(t *testing.T) {
	dir := t.TempDir()
	cover := writeCover(t, dir, 40, 40)
	stego := filepath.Join(dir, "stego.bmp")
	output := filepath.Join(dir, "recovered.txt")

	_, _, err := runCommand(strings.NewReader("hello world"), "embed", cover, stego, "-", "-o", "SEQ", "-m", "lsb")
	require.NoError(t, err)

	_, _, err = runCommand(nil, "extract", stego, output, "-o", "SEQ")
	require.NoError(t, err)
	recovered, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(recovered))

	_, _, err = runCommand(nil, "extract", stego, "-o", "RNG")
	assert.ErrorIs(t, err, kikiImage.ErrIntegrityMismatch)
}

func TestMethodResolution(t *testing.T) {
	dir := t.TempDir()
	cover := writeCover(t, dir, 16, 16)
	secretPath := writeFile(t, dir, "secret.txt", []byte("x"))

	_, _, err := runCommand(nil, "embed", cover, filepath.Join(dir, "out.png"), secretPath, "-m", "DCT")
	assert.ErrorIs(t, err, media.ErrUnsupportedMethod)

	_, _, err = runCommand(nil, "embed", cover, filepath.Join(dir, "out.jpg"), secretPath)
	assert.ErrorIs(t, err, media.ErrUnsupportedFormat)

	_, _, err = runCommand(nil, "embed", cover, filepath.Join(dir, "out"), secretPath)
	assert.ErrorIs(t, err, media.ErrMissingExtension)

	_, _, err = runCommand(nil, "embed", cover, filepath.Join(dir, "out.png"), secretPath, "-o", "SPIRAL")
	assert.ErrorContains(t, err, "SPIRAL")
}

func TestEmbedCapacityExceeded(t *testing.T) {
	dir := t.TempDir()
	cover := writeCover(t, dir, 8, 8)
	stego := filepath.Join(dir, "stego.png")

	_, _, err := runCommand(bytes.NewReader(make([]byte, 13)), "embed", cover, stego)
	assert.ErrorIs(t, err, kikiImage.ErrCapacityExceeded)
	assert.NoFileExists(t, stego)
}

func TestExtractLargeMessageGate(t *testing.T) {
	dir := t.TempDir()
	cover := writeCover(t, dir, 40, 40)
	stego := filepath.Join(dir, "stego.png")
	secret := test.GenerateSeededBytes(9, 100)

	_, _, err := runCommand(bytes.NewReader(secret), "embed", cover, stego)
	require.NoError(t, err)

	_, stderr, err := runCommand(&bytes.Buffer{}, "extract", stego, "--max-message", "10")
	assert.ErrorIs(t, err, kikiImage.ErrUserAborted)
	assert.Contains(t, stderr, "rerun with --yes")

	stdout, _, err := runCommand(nil, "extract", stego, "--max-message", "10", "--yes")
	require.NoError(t, err)
	assert.Equal(t, secret, []byte(stdout))

	stdout, _, err = runCommand(nil, "extract", stego, "--max-message", "-1")
	require.NoError(t, err)
	assert.Equal(t, secret, []byte(stdout))
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cover := writeCover(t, dir, 30, 30)
	stego := filepath.Join(dir, "stego.png")
	configPath := writeFile(t, dir, "kiki.yaml", []byte("mode: SEQ\nlarge_payload_threshold: 4\npng_compression: none\n"))

	_, _, err := runCommand(strings.NewReader("from config"), "embed", cover, stego, "--config", configPath)
	require.NoError(t, err)

	// the threshold comes from the file too
	_, _, err = runCommand(&bytes.Buffer{}, "extract", stego, "--config", configPath)
	assert.ErrorIs(t, err, kikiImage.ErrUserAborted)

	stdout, _, err := runCommand(nil, "extract", stego, "-o", "SEQ", "--yes")
	require.NoError(t, err)
	assert.Equal(t, "from config", stdout)
}

func TestAskKeyNeedsTerminal(t *testing.T) {
	dir := t.TempDir()
	cover := writeCover(t, dir, 16, 16)

	_, _, err := runCommand(strings.NewReader(""), "extract", cover, "--ask-key")
	assert.ErrorContains(t, err, "interactive terminal")

	_, _, err = runCommand(nil, "extract", cover, "--ask-key", "--key", "k")
	assert.Error(t, err)
}

func TestPrompt(t *testing.T) {
	tests := []struct {
		answer    string
		confirmed bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.answer), func(t *testing.T) {
			var out bytes.Buffer
			p := &prompt{in: bufio.NewReader(strings.NewReader(tt.answer)), out: &out, interactive: true}

			confirmed, err := p.ConfirmLargePayload(3 * 1024 * 1024)
			require.NoError(t, err)
			assert.Equal(t, tt.confirmed, confirmed)
			assert.Contains(t, out.String(), "3.0 MiB")
		})
	}
}

func TestExecuteWritesProfiles(t *testing.T) {
	dir := t.TempDir()
	cover := writeCover(t, dir, 16, 16)
	secretPath := writeFile(t, dir, "secret.txt", []byte("profiled"))
	cpuProfile := filepath.Join(dir, "cpu.prof")
	memDir := filepath.Join(dir, "mem")

	err := Execute(context.Background(), []string{
		"--cpu-profile", cpuProfile, "--mem-profile-dir", memDir,
		"embed", cover, filepath.Join(dir, "stego.png"), secretPath,
	})
	require.NoError(t, err)

	assert.FileExists(t, cpuProfile)
	assert.FileExists(t, filepath.Join(memDir, "mem-0.mprof"))
}
