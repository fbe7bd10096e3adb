package fixture

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MyNameIsWhaaat/reviewtree/internal/review/model"
)

const doc = `{
  "comments": [
    {
      "id": 1,
      "title": "Great blender",
      "body": "Crushes ice",
      "reviewer_name": "Anna",
      "product_handle": "blender-x",
      "timestamp": "2024-02-01T10:00:00.000Z",
      "rating": 5,
      "helpful_count": 12,
      "verified_purchase": true,
      "featured": true,
      "likes": 4,
      "replies": [
        {"id": 1001, "author": "John", "content": "Where?", "timestamp": "2024-02-02T10:00:00.000Z", "likes": 2},
        {"id": 1002, "author": "Anna", "content": "Online", "timestamp": "2024-02-03T10:00:00.000Z", "likes": 0, "parentId": 1001}
      ],
      "has_follow_up": true,
      "follow_up": {"content": "Still good", "timestamp": "2024-03-01T10:00:00.000Z", "days_later": 28}
    },
    {
      "id": 2,
      "title": "Too loud",
      "body": "Noisy",
      "reviewer_name": "Bob",
      "product_handle": "blender-x",
      "timestamp": "2024-02-05T10:00:00.000Z",
      "rating": 3,
      "helpful_count": 1,
      "verified_purchase": false,
      "featured": false
    }
  ],
  "statistics": {"total": 2, "averageRating": "4.0"},
  "lastUpdated": "2024-03-10T08:00:00.000Z"
}`

func TestDecode(t *testing.T) {
	fx, err := Decode([]byte(doc))
	require.NoError(t, err)

	require.Len(t, fx.Comments, 2)
	c := fx.Comments[0]
	assert.Equal(t, "Anna", c.ReviewerName)
	assert.True(t, c.Featured)
	require.Len(t, c.Replies, 2)
	assert.Equal(t, int64(0), c.Replies[0].ParentID)
	assert.Equal(t, int64(1001), c.Replies[1].ParentID)
	require.NotNil(t, c.FollowUp)
	assert.Equal(t, 28, c.FollowUp.DaysLater)

	assert.Equal(t, 2, fx.Statistics.Total)
	assert.Equal(t, 4.0, fx.Statistics.AverageRating)
	assert.Equal(t, time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC), fx.LastUpdated.UTC())
}

func TestDecodeDegradesToEmpty(t *testing.T) {
	cases := map[string]string{
		"missing field": `{"statistics": {}}`,
		"null":          `{"comments": null}`,
		"object":        `{"comments": {"id": 1}}`,
		"string":        `{"comments": "none"}`,
		"not an object": `[1, 2, 3]`,
		"empty":         ``,
		"blank":         "   \n\t",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			fx, err := Decode([]byte(in))
			require.NoError(t, err)
			assert.NotNil(t, fx.Comments)
			assert.Empty(t, fx.Comments)
			assert.Equal(t, 0, fx.Statistics.Total)
		})
	}
}

func TestDecodeSkipsMalformedRecords(t *testing.T) {
	in := `{"comments": [{"id": 1, "rating": 4}, {"id": "two"}, {"id": 3, "rating": 5}]}`
	fx, err := Decode([]byte(in))
	require.NoError(t, err)

	require.Len(t, fx.Comments, 2)
	assert.Equal(t, int64(1), fx.Comments[0].ID)
	assert.Equal(t, int64(3), fx.Comments[1].ID)
}

func TestDecodeRepairsSyntax(t *testing.T) {
	in := `{"comments": [{"id": 1, "rating": 4,}, {"id": 2, "rating": 2}]`
	fx, err := Decode([]byte(in))
	require.NoError(t, err)
	assert.Len(t, fx.Comments, 2)
}

func TestEncodeRoundTripKeepsComments(t *testing.T) {
	fx, err := Decode([]byte(doc))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, fx))
	assert.Contains(t, buf.String(), `"reviewer_name": "Anna"`)
	assert.Contains(t, buf.String(), `"parentId": 1001`)

	again, err := Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, len(fx.Comments), len(again.Comments))
	assert.Equal(t, fx.Statistics, again.Statistics)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comments.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	comments, err := FileSource{Path: path}.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, comments, 2)

	_, err = FileSource{Path: filepath.Join(t.TempDir(), "missing.json")}.Load(context.Background())
	assert.Error(t, err)
}

func TestFileSourceEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comments.json")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	comments, err := FileSource{Path: path}.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestReadCSV(t *testing.T) {
	in := strings.Join([]string{
		`"Title","Body","Reviewer Name","Product Handle"`,
		`"Nice","Fits well, true to size","Kim","shirt-1"`,
		`short`,
		``,
		`"Bad","Tore after a wash","Lee","shirt-1"`,
	}, "\n")

	rows, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Fits well, true to size", rows[0]["Body"])
	assert.Equal(t, "Lee", rows[1]["Reviewer Name"])
}

func TestGenerate(t *testing.T) {
	rows := []map[string]string{
		{"Title": "Nice", "Body": "Fits well", "Reviewer Name": "Kim", "Product Handle": "shirt-1"},
		{},
	}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for seed := uint64(1); seed <= 20; seed++ {
		fx := NewGenerator(seed, now).Generate(rows)
		require.Len(t, fx.Comments, 2)

		a := fx.Comments[0]
		assert.Equal(t, int64(1), a.ID)
		assert.Equal(t, "Nice", a.Title)
		assert.Equal(t, "Kim", a.ReviewerName)
		assert.Equal(t, "shirt-1", a.ProductHandle)

		b := fx.Comments[1]
		assert.Equal(t, "Review 2", b.Title)
		assert.Equal(t, "This is a great review content.", b.Body)
		assert.Equal(t, "default-product", b.ProductHandle)
		assert.True(t, strings.HasPrefix(b.ReviewerName, "User"))

		for _, c := range fx.Comments {
			assert.GreaterOrEqual(t, c.Rating, 3)
			assert.LessOrEqual(t, c.Rating, 5)
			assert.False(t, c.Timestamp.After(now))
			assert.Equal(t, c.HasFollowUp, c.FollowUp != nil)
			assertRepliesWellFormed(t, c.Replies)
		}
	}
}

func TestGenerateIsReproducible(t *testing.T) {
	rows := []map[string]string{{"Title": "a"}, {"Title": "b"}, {"Title": "c"}}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	var x, y bytes.Buffer
	require.NoError(t, Encode(&x, NewGenerator(7, now).Generate(rows)))
	require.NoError(t, Encode(&y, NewGenerator(7, now).Generate(rows)))
	assert.Equal(t, x.String(), y.String())
}

func assertRepliesWellFormed(t *testing.T, replies []model.Reply) {
	t.Helper()

	seen := map[int64]bool{}
	for _, r := range replies {
		assert.False(t, seen[r.ID], "duplicate reply id %d", r.ID)
		if r.ParentID != 0 {
			assert.True(t, seen[r.ParentID], "reply %d points forward to %d", r.ID, r.ParentID)
		}
		seen[r.ID] = true
	}
}
