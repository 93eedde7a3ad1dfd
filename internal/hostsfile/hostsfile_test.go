package hostsfile

import (
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zumuvik/updater-hosts/internal/engine"
	"github.com/zumuvik/updater-hosts/internal/mocks"
)

func sampleResults() []engine.Result {
	return []engine.Result{
		{Domain: "example.com", IP: net.ParseIP("93.184.216.34").To4(), Index: 0, Source: engine.SourceDirect},
		{Domain: "gone.test", Index: 1},
		{Domain: "shop.net", IP: net.ParseIP("1.2.3.4").To4(), Index: 2, Source: engine.SourceSimilar},
	}
}

func TestRender(t *testing.T) {
	content := Render(sampleResults())

	assert.Contains(t, content, "93.184.216.34\texample.com\n")
	assert.Contains(t, content, "# gone.test - unresolved\n")
	assert.Contains(t, content, "1.2.3.4\tshop.net\n")
	assert.Contains(t, content, "# processed: 3, resolved: 2, unresolved: 1\n")

	// Heuristic results are rendered exactly like direct ones.
	assert.NotContains(t, content, "similar")
}

func TestEntries(t *testing.T) {
	content := Render(sampleResults())
	entries := Entries(content)

	assert.Equal(t, []string{
		"93.184.216.34\texample.com",
		"1.2.3.4\tshop.net",
	}, entries)
}

func TestEntriesEmpty(t *testing.T) {
	assert.Empty(t, Entries("# only comments\n\n# here\n"))
}

func TestBackup(t *testing.T) {
	t.Run("copies system hosts", func(t *testing.T) {
		fs := new(mocks.MockOsFS)
		fs.On("ReadFile", "/etc/hosts").Return([]byte("127.0.0.1 localhost\n"), nil)
		fs.On("WriteFile", BackupFile, []byte("127.0.0.1 localhost\n"), os.FileMode(0o644)).Return(nil)

		require.NoError(t, Backup(fs, "/etc/hosts"))
		fs.AssertExpectations(t)
	})

	t.Run("read failure", func(t *testing.T) {
		fs := new(mocks.MockOsFS)
		fs.On("ReadFile", "/etc/hosts").Return(nil, os.ErrPermission)

		assert.Error(t, Backup(fs, "/etc/hosts"))
	})
}

func TestAppend(t *testing.T) {
	t.Run("appends only address lines", func(t *testing.T) {
		fs := new(mocks.MockOsFS)
		expected := []byte("93.184.216.34\texample.com\n1.2.3.4\tshop.net\n")
		fs.On("AppendFile", "/etc/hosts", expected, os.FileMode(0o644)).Return(nil)

		require.NoError(t, Append(fs, Render(sampleResults()), "/etc/hosts"))
		fs.AssertExpectations(t)
	})

	t.Run("nothing resolved", func(t *testing.T) {
		fs := new(mocks.MockOsFS)
		content := Render([]engine.Result{{Domain: "gone.test"}})

		assert.ErrorIs(t, Append(fs, content, "/etc/hosts"), ErrNoEntries)
		fs.AssertNotCalled(t, "AppendFile", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("append failure", func(t *testing.T) {
		fs := new(mocks.MockOsFS)
		fs.On("AppendFile", mock.Anything, mock.Anything, mock.Anything).Return(os.ErrPermission)

		assert.Error(t, Append(fs, Render(sampleResults()), "/etc/hosts"))
	})
}

func TestSystemPath(t *testing.T) {
	// Whatever the platform, the path must be non-empty and absolute-ish.
	p := SystemPath()
	assert.NotEmpty(t, p)
	assert.Contains(t, p, "hosts")
}
