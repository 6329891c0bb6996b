package diag

import "testing"

func TestReporterShouldProceedUntilFirstError(t *testing.T) {
	r := NewReporter(LevelSilent)
	if !r.ShouldProceed() {
		t.Fatal("expected a fresh reporter to allow proceeding")
	}
	r.ReportError(Raise(KindType, nil, "bad type"))
	if r.ShouldProceed() {
		t.Fatal("expected ShouldProceed to go false after an error")
	}
}

func TestReporterCounts(t *testing.T) {
	r := NewReporter(LevelSilent)
	r.ReportError(Raise(KindName, nil, "undeclared %s", "x"))
	r.ReportError(Raise(KindDefinition, nil, "duplicate"))
	r.ReportWarning("heads up")

	errs, warns := r.Counts()
	if errs != 2 {
		t.Errorf("expected 2 errors, got %d", errs)
	}
	if warns != 1 {
		t.Errorf("expected 1 warning, got %d", warns)
	}
}

func TestFaultError(t *testing.T) {
	f := Raise(KindOption, nil, "unknown flag %q", "-z")
	want := `Option error: unknown flag "-z"`
	if f.Error() != want {
		t.Errorf("got %q, want %q", f.Error(), want)
	}
}

func TestCatchRecoversFault(t *testing.T) {
	r := NewReporter(LevelSilent)

	func() {
		defer r.Catch()
		panic(Raise(KindType, nil, "boom"))
	}()

	errs, _ := r.Counts()
	if errs != 1 {
		t.Errorf("expected Catch to count the recovered Fault as an error, got %d", errs)
	}
}

func TestCatchRecoversICE(t *testing.T) {
	r := NewReporter(LevelSilent)

	func() {
		defer r.Catch()
		Raisef("invariant %s violated", "X")
	}()

	errs, _ := r.Counts()
	if errs != 1 {
		t.Errorf("expected Catch to count the recovered ICE as an error, got %d", errs)
	}
}

func TestCatchRepanicsOnUnknownValue(t *testing.T) {
	r := NewReporter(LevelSilent)

	defer func() {
		if recover() == nil {
			t.Fatal("expected Catch to re-panic a value it doesn't recognize")
		}
	}()

	func() {
		defer r.Catch()
		panic("not a Fault or ICE")
	}()
}

func TestICEError(t *testing.T) {
	e := &ICE{Message: "unreachable case"}
	want := "internal compiler error: unreachable case"
	if e.Error() != want {
		t.Errorf("got %q, want %q", e.Error(), want)
	}
}
