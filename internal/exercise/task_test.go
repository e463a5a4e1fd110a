package exercise

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_ReadsBeforeFetchFail(t *testing.T) {
	task := NewTask(ForeignWords())

	_, err := task.Question()
	assert.ErrorIs(t, err, ErrNoTask)
	_, err = task.Answer()
	assert.ErrorIs(t, err, ErrNoTask)
	_, err = task.ItemID()
	assert.ErrorIs(t, err, ErrNoTask)
	_, err = task.Extra()
	assert.ErrorIs(t, err, ErrNoTask)
	assert.False(t, task.Loaded())
}

func TestTask_DerivedViews(t *testing.T) {
	task := NewTask(ForeignWords())
	task.SetData(Payload{"question_text": "cat", "answer_text": "кот", "id": 7.0})

	q, err := task.Question()
	require.NoError(t, err)
	assert.Equal(t, "cat", q)

	a, err := task.Answer()
	require.NoError(t, err)
	assert.Equal(t, "кот", a)

	id, err := task.ItemID()
	require.NoError(t, err)
	assert.Equal(t, 7.0, id)
	assert.Equal(t, "7", FormatItemID(id))
}

func TestTask_SetDataReplacesWholesale(t *testing.T) {
	task := NewTask(GlossaryTerms())
	task.SetData(Payload{"question_text": "a", "answer_text": "b", "id": 1, "info": "x"})
	task.SetData(Payload{"question_text": "c", "answer_text": "d", "id": 2})

	extra, err := task.Extra()
	require.NoError(t, err)
	assert.Empty(t, extra, "old extra info must not survive a replacement")
}

func TestTask_MissingID(t *testing.T) {
	task := NewTask(ForeignWords())
	task.SetData(Payload{"question_text": "cat"})

	_, err := task.ItemID()
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoTask))

	a, err := task.Answer()
	require.NoError(t, err)
	assert.Empty(t, a)
}

func TestTask_ExtraInVariantOrder(t *testing.T) {
	v := GlossaryTerms()
	v.ExtraKeys = []string{"info", "source"}
	task := NewTask(v)
	task.SetData(Payload{"question_text": "q", "answer_text": "a", "id": 1, "source": "wiki", "info": "noun"})

	extra, err := task.Extra()
	require.NoError(t, err)
	assert.Equal(t, []ExtraField{{Key: "info", Value: "noun"}, {Key: "source", Value: "wiki"}}, extra)
}

func TestTask_CustomKeys(t *testing.T) {
	v := Variant{Name: "custom", QuestionKey: "front", AnswerKey: "back", IDKey: "pk"}
	task := NewTask(v)
	task.SetData(Payload{"front": "F", "back": "B", "pk": "abc"})

	q, _ := task.Question()
	a, _ := task.Answer()
	id, _ := task.ItemID()
	assert.Equal(t, "F", q)
	assert.Equal(t, "B", a)
	assert.Equal(t, "abc", id)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "none", StatusNone.String())
	assert.Equal(t, "awaiting-answer", StatusAwaitingAnswer.String())
	assert.Equal(t, "awaiting-question", StatusAwaitingQuestion.String())
}

func TestFormatItemID(t *testing.T) {
	assert.Equal(t, "7", FormatItemID(7.0))
	assert.Equal(t, "7.5", FormatItemID(7.5))
	assert.Equal(t, "12", FormatItemID(12))
	assert.Equal(t, "abc", FormatItemID("abc"))
}
