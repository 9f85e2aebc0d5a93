package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"diligence-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The CRM streams attachments without a size; the count taken during the
// upload copy is what gets persisted and later declared as the download's
// content length, so it must match the bytes actually copied.
func TestCountingReaderTalliesCopiedBytes(t *testing.T) {
	payload := "signed guarantee agreement"
	counted := &countingReader{r: strings.NewReader(payload)}

	n, err := io.Copy(io.Discard, counted)
	require.NoError(t, err)

	assert.Equal(t, int64(len(payload)), n)
	assert.Equal(t, int64(len(payload)), counted.n)
}

func TestCountingReaderAccumulatesAcrossSmallReads(t *testing.T) {
	payload := "abcdefghij"
	counted := &countingReader{r: strings.NewReader(payload)}

	buf := make([]byte, 3)
	for {
		if _, err := counted.Read(buf); err == io.EOF {
			break
		} else {
			require.NoError(t, err)
		}
	}

	assert.Equal(t, int64(len(payload)), counted.n)
}

func TestArchiveAttachmentsSkippedWithoutStorage(t *testing.T) {
	svc := NewActivityService()

	activity := &models.Activity{GuaranteeID: "G-100"}
	assert.NoError(t, svc.archiveAttachments(context.Background(), activity))
}
