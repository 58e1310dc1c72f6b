package diagnostics

import (
	"testing"

	"github.com/oxhq/vellum/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sp() token.Span {
	p := token.Position{Line: 1, Column: 1}
	return token.Span{Start: p, End: p}
}

func TestRecordAccumulatesInOrder(t *testing.T) {
	l := NewLog()
	l.Record(New(EUnknownName, sp(), "x"))
	l.Record(New(ERedefinition, sp(), "y"))
	require.Len(t, l.Errors(), 2)
	assert.Equal(t, EUnknownName, l.Errors()[0].Kind)
	assert.True(t, l.HasErrors())
}

func TestDisableMasksKind(t *testing.T) {
	l := NewLog()
	l.Disable(EUnknownName)
	l.Record(New(EUnknownName, sp(), "x"))
	assert.False(t, l.HasErrors())

	l.Enable(EUnknownName)
	l.Record(New(EUnknownName, sp(), "x"))
	assert.True(t, l.HasErrors())
}

func TestAbortUnwindsToRecover(t *testing.T) {
	l := NewLog()
	run := func() (err error) {
		defer Recover(&err)
		l.Abort(New(EWriteToImmutable, sp(), "cannot write"))
		t.Fatal("unreachable")
		return nil
	}
	err := run()
	require.Error(t, err)
	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, EWriteToImmutable, be.Kind)
	assert.True(t, l.HasErrors())
}

func TestAbortStillUnwindsButDoesNotRecordWhenMasked(t *testing.T) {
	l := NewLog()
	l.Disable(ECTConstRequired)
	run := func() (err error) {
		defer Recover(&err)
		l.Abort(New(ECTConstRequired, sp(), "not constant"))
		return nil
	}
	err := run()
	require.Error(t, err)
	assert.False(t, l.HasErrors())
}

func TestRecoverRepanicsUnrelatedPanics(t *testing.T) {
	run := func() (err error) {
		defer Recover(&err)
		panic("boom")
	}
	assert.Panics(t, func() { _ = run() })
}

func TestInternalErrorUnwrap(t *testing.T) {
	cause := assert.AnError
	ie := Internalf("broke: %v", cause)
	ie.Cause = cause
	assert.ErrorIs(t, ie, cause)
}
