package drive

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	files    []*File
	contents map[string]string
	fail     string
}

func (f *fakeSource) ListFiles(_ context.Context, _ string) ([]*File, error) {
	return f.files, nil
}

func (f *fakeSource) DownloadFile(_ context.Context, id string, w io.Writer) error {
	if id == f.fail {
		return errors.New("boom")
	}
	_, err := io.WriteString(w, f.contents[id])
	return err
}

func TestDownloaderDownload(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		files: []*File{
			{ID: "1", Name: "MTR_B2C_Jan.csv"},
			{ID: "2", Name: "Inventory Ledger.xlsx"},
			{ID: "3", Name: "notes.pdf"},
			{ID: "4", Name: "archive", MimeType: folderMimeType},
			{ID: "5", Name: "mtr_feb.zip"},
		},
		contents: map[string]string{"1": "Sku\nA\n", "2": "xlsx-bytes", "5": "zip-bytes"},
	}

	t.Run("all supported files", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		files, err := NewDownloader(src).Download(context.Background(), DownloadOptions{DownloadDir: dir})
		require.NoError(t, err)
		require.Len(t, files, 3)
		assert.Equal(t, "MTR_B2C_Jan.csv", files[0].Name)
		assert.Equal(t, "Sku\nA\n", string(files[0].Data))

		data, err := os.ReadFile(filepath.Join(dir, "mtr_feb.zip"))
		require.NoError(t, err)
		assert.Equal(t, "zip-bytes", string(data))
	})

	t.Run("name filter", func(t *testing.T) {
		t.Parallel()
		files, err := NewDownloader(src).Download(context.Background(), DownloadOptions{NameFilter: "MTR"})
		require.NoError(t, err)
		require.Len(t, files, 2)
		assert.Equal(t, "mtr_feb.zip", files[1].Name)
	})

	t.Run("download failure", func(t *testing.T) {
		t.Parallel()
		failing := &fakeSource{files: src.files, contents: src.contents, fail: "2"}
		_, err := NewDownloader(failing).Download(context.Background(), DownloadOptions{})
		assert.Error(t, err)
	})
}

func TestEscapeQuery(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `Seller\'s reports`, escapeQuery("Seller's reports"))
}
