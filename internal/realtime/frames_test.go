package realtime_test

import (
	"testing"

	"projectroom/internal/realtime"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClientFrame(t *testing.T) {
	t.Run("Join", func(t *testing.T) {
		frame, err := realtime.ParseClientFrame([]byte(`{"type":"join","projectId":"PR-1001"}`))
		require.NoError(t, err)
		assert.Equal(t, realtime.JoinFrame{ProjectID: "PR-1001"}, frame)
	})

	t.Run("Leave", func(t *testing.T) {
		frame, err := realtime.ParseClientFrame([]byte(`{"type":"leave","projectId":"PR-1001"}`))
		require.NoError(t, err)
		assert.Equal(t, realtime.LeaveFrame{ProjectID: "PR-1001"}, frame)
	})

	t.Run("Numeric project id", func(t *testing.T) {
		frame, err := realtime.ParseClientFrame([]byte(`{"type":"join","projectId":42}`))
		require.NoError(t, err)
		assert.Equal(t, realtime.JoinFrame{ProjectID: "42"}, frame)
	})

	malformed := map[string]string{
		"Not JSON":           `join PR-1`,
		"Unknown type":       `{"type":"subscribe","projectId":"PR-1"}`,
		"Missing type":       `{"projectId":"PR-1"}`,
		"Missing project id": `{"type":"join"}`,
		"Null project id":    `{"type":"join","projectId":null}`,
		"Blank project id":   `{"type":"leave","projectId":"  "}`,
		"Object project id":  `{"type":"join","projectId":{"id":1}}`,
	}
	for name, raw := range malformed {
		t.Run(name, func(t *testing.T) {
			frame, err := realtime.ParseClientFrame([]byte(raw))
			assert.Nil(t, frame)
			assert.ErrorIs(t, err, realtime.ErrMalformedFrame)
		})
	}
}

func TestServerFrameEncoding(t *testing.T) {
	assert.JSONEq(t, `{"type":"joined"}`, encode(realtime.Joined()))
	assert.JSONEq(t, `{"type":"left"}`, encode(realtime.Left()))
	assert.JSONEq(t, `{"type":"error","message":"access denied"}`, encode(realtime.Error("access denied")))
	assert.JSONEq(t, `{"type":"notification","type2":"chat","message":"hi"}`, encode(realtime.ChatActivity("hi")))

	doc := realtime.Notification(realtime.NotifyDocument, "uploaded")
	doc.ProjectID = "PR-7"
	doc.UploadBy = "MRR"
	doc.Document = map[string]any{"id": 3}
	assert.JSONEq(t,
		`{"type":"notification","type2":"document","message":"uploaded","projectId":"PR-7","uploadBy":"MRR","document":{"id":3}}`,
		encode(doc))
}
