package errors

import (
	stderrors "errors"
	"io"
	"strings"
	"testing"
)

func TestErrorFormat(t *testing.T) {
	err := New(PhaseDecode, KindTruncatedTable).
		Container("Core").
		Detail("export table ends at row %d", 7).
		Build()

	s := err.Error()
	if !strings.Contains(s, "[decode]") {
		t.Errorf("missing phase: %s", s)
	}
	if !strings.Contains(s, "truncated_table") {
		t.Errorf("missing kind: %s", s)
	}
	if !strings.Contains(s, "in Core") {
		t.Errorf("missing container: %s", s)
	}
	if !strings.Contains(s, "row 7") {
		t.Errorf("detail not formatted: %s", s)
	}
}

func TestErrorFormat_ObjectAndCause(t *testing.T) {
	err := &Error{
		Phase:  PhaseResolve,
		Kind:   KindUnresolvedImport,
		Object: "Core.Engine.Actor",
		Cause:  io.ErrUnexpectedEOF,
	}

	s := err.Error()
	if !strings.Contains(s, "at Core.Engine.Actor") {
		t.Errorf("missing object: %s", s)
	}
	if !strings.Contains(s, "caused by: unexpected EOF") {
		t.Errorf("missing cause: %s", s)
	}
}

func TestIs_MatchesPhaseAndKind(t *testing.T) {
	err := UnresolvedImport("Core.Foo")

	if !stderrors.Is(err, &Error{Phase: PhaseResolve, Kind: KindUnresolvedImport}) {
		t.Error("expected match on phase+kind")
	}
	if stderrors.Is(err, &Error{Phase: PhaseExport, Kind: KindUnresolvedImport}) {
		t.Error("unexpected match with different phase")
	}
	if stderrors.Is(err, &Error{Phase: PhaseResolve, Kind: KindSelfEdge}) {
		t.Error("unexpected match with different kind")
	}
}

func TestUnwrap(t *testing.T) {
	cause := io.ErrClosedPipe
	err := IO(PhaseExport, "Body", cause)

	if !stderrors.Is(err, io.ErrClosedPipe) {
		t.Error("expected unwrap to reach cause")
	}
}

func TestConstructors(t *testing.T) {
	cases := []struct {
		err  *Error
		kind Kind
	}{
		{MalformedHeader("A", "bad magic"), KindMalformedHeader},
		{TruncatedTable("A", "import", nil), KindTruncatedTable},
		{BadNameReference("A", 12, 3), KindBadNameReference},
		{UnresolvedContainer("B"), KindUnresolvedPackage},
		{UnresolvedImport("B.Core.Foo"), KindUnresolvedImport},
		{SelfEdge("A/5"), KindSelfEdge},
		{WrongIndexTag("ExportIndex", -3), KindWrongIndexTag},
		{NotMaterialized("A", "A.Mesh"), KindNotMaterialized},
		{Cycle("A/2"), KindCycle},
		{InvalidState("WriteBodies", "Built"), KindInvalidState},
	}

	for _, tc := range cases {
		if tc.err.Kind != tc.kind {
			t.Errorf("constructor for %s produced kind %s", tc.kind, tc.err.Kind)
		}
		if tc.err.Error() == "" {
			t.Errorf("empty message for kind %s", tc.kind)
		}
	}
}
