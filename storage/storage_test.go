package storage

import (
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/Durai69/LLS-Survey/engine"
	"github.com/Durai69/LLS-Survey/storage/model"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(
		Config{
			Driver:  DriverSQLite,
			DataDir: t.TempDir(),
			UsersHash: Argon2idParams{
				Time:        1,
				MemoryKiB:   8 * 1024,
				Parallelism: 1,
				KeyLen:      32,
				SaltLen:     16,
			},
		},
	)
	if err != nil {
		t.Fatalf("could not create storage: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedDepartments(t *testing.T, s *Storage, names ...string) []model.Department {
	t.Helper()
	departments := make([]model.Department, len(names))
	for i, name := range names {
		d, err := s.DepartmentsStorage().Create(name)
		if err != nil {
			t.Fatalf("could not create department %s: %v", name, err)
		}
		departments[i] = *d
	}
	return departments
}

func mustWindow(t *testing.T, start, end string) model.Window {
	t.Helper()
	w, err := model.NewWindow(start, end)
	if err != nil {
		t.Fatalf("invalid window: %v", err)
	}
	return w
}

func edge(from, to uint) model.PermissionEdge {
	return model.PermissionEdge{
		FromDepartmentID: from,
		ToDepartmentID:   to,
	}
}

func TestDepartments(t *testing.T) {
	s := newTestStorage(t)
	seedDepartments(t, s, "QA", "IT", "HR")
	store := s.DepartmentsStorage()

	list, err := store.List()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 3 || list[0].Name != "HR" || list[2].Name != "QA" {
		t.Fatalf("expected departments ordered by name, got %+v", list)
	}
	if _, err = store.Create("IT"); !errors.As(err, new(model.AlreadyExistsError)) {
		t.Errorf("expected AlreadyExistsError, got %v", err)
	}
	if _, err = store.Get(999); !errors.As(err, new(model.NotFoundError)) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
	if n, _ := store.Count(); n != 3 {
		t.Errorf("expected 3 departments, got %d", n)
	}
}

func TestPermissionsSaveLoad(t *testing.T) {
	s := newTestStorage(t)
	d := seedDepartments(t, s, "IT", "HR", "QA")
	store := s.PermissionsStorage()

	snap, err := store.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Version != 0 || len(snap.Edges) != 0 || !snap.Window.IsZero() {
		t.Fatalf("expected empty initial matrix, got %+v", snap)
	}

	window := mustWindow(t, "2025-01-01", "2025-01-31")
	edges := []model.PermissionEdge{edge(d[0].ID, d[1].ID), edge(d[1].ID, d[0].ID), edge(d[2].ID, d[0].ID)}
	saved, err := store.Save(0, edges, window)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.Version != 1 {
		t.Fatalf("expected version 1, got %d", saved.Version)
	}

	snap, err = store.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Version != 1 || len(snap.Edges) != 3 || !snap.Window.Equal(window) {
		t.Fatalf("load does not round-trip save: %+v", snap)
	}
	for _, e := range snap.Edges {
		if !e.Window().Equal(window) {
			t.Errorf("edge %d->%d has window %s", e.FromDepartmentID, e.ToDepartmentID, e.Window())
		}
	}

	outgoing, err := store.Outgoing(d[1].ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outgoing) != 1 || outgoing[0].ToDepartmentID != d[0].ID {
		t.Fatalf("unexpected outgoing edges %+v", outgoing)
	}

	// a second save based on the old version must not win
	if _, err = store.Save(0, edges[:1], window); !errors.As(err, new(model.ConflictError)) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	snap, _ = store.Load()
	if snap.Version != 1 || len(snap.Edges) != 3 {
		t.Fatalf("conflicting save modified the matrix: %+v", snap)
	}

	// an empty matrix keeps its window
	next := mustWindow(t, "2025-02-01", "2025-02-28")
	if _, err = store.Save(1, nil, next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap, _ = store.Load()
	if snap.Version != 2 || len(snap.Edges) != 0 || !snap.Window.Equal(next) {
		t.Fatalf("unexpected snapshot after clearing: %+v", snap)
	}

	if _, err = store.Save(2, nil, model.Window{Start: next.End, End: next.Start}); !errors.As(
		err, new(model.ValidationError),
	) {
		t.Fatalf("expected ValidationError for inverted window, got %v", err)
	}
}

func TestPermissionsConcurrentSave(t *testing.T) {
	s := newTestStorage(t)
	d := seedDepartments(t, s, "IT", "HR")
	store := s.PermissionsStorage()
	window := mustWindow(t, "2025-01-01", "2025-01-31")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.Save(0, []model.PermissionEdge{edge(d[i].ID, d[1-i].ID)}, window)
		}(i)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.As(err, new(model.ConflictError)):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflicts != 1 {
		t.Fatalf("expected one save and one conflict, got %d/%d", ok, conflicts)
	}
}

func createSurvey(t *testing.T, s *Storage, rated uint) *model.Survey {
	t.Helper()
	survey := &model.Survey{
		Title:             "Service survey",
		RatedDepartmentID: rated,
		Questions: []model.Question{
			{
				Text:  "How satisfied are you?",
				Type:  model.QuestionTypeRating,
				Order: 1,
			},
			{
				Text:  "Anything else?",
				Type:  model.QuestionTypeText,
				Order: 2,
			},
		},
	}
	if err := s.SurveysStorage().Create(survey); err != nil {
		t.Fatalf("could not create survey: %v", err)
	}
	return survey
}

// newSubmission creates a submission made on the first day of window
func newSubmission(survey *model.Survey, from uint, window model.Window, overall float64, remark string) *model.SurveySubmission {
	rating := 2
	sub := &model.SurveySubmission{
		SurveyID:              survey.ID,
		SubmitterUserID:       "user-1",
		SubmitterDepartmentID: from,
		RatedDepartmentID:     survey.RatedDepartmentID,
		SubmittedAt:           window.Start.Add(10 * time.Hour),
		OverallRating:         overall,
		Answers: []model.SurveyAnswer{
			{
				QuestionID: survey.Questions[0].ID,
				Rating:     &rating,
				Remarks:    remark,
			},
			{
				QuestionID: survey.Questions[1].ID,
				Remarks:    "keep going",
			},
		},
	}
	sub.SetWindow(window)
	return sub
}

func TestSurveys(t *testing.T) {
	s := newTestStorage(t)
	d := seedDepartments(t, s, "IT", "HR")
	survey := createSurvey(t, s, d[1].ID)
	store := s.SurveysStorage()

	got, err := store.Get(survey.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Questions) != 2 || got.Questions[0].Order != 1 {
		t.Fatalf("unexpected questions %+v", got.Questions)
	}
	list, err := store.ForRatedDepartments([]uint{d[0].ID})
	if err != nil || len(list) != 0 {
		t.Fatalf("expected no surveys rating IT, got %+v, %v", list, err)
	}
	list, err = store.ForRatedDepartments([]uint{d[0].ID, d[1].ID})
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one survey, got %+v, %v", list, err)
	}
	if _, err = store.Get(999); !errors.As(err, new(model.NotFoundError)) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
	if err = store.Create(&model.Survey{Title: "x", RatedDepartmentID: 999}); !errors.As(
		err, new(model.ValidationError),
	) {
		t.Errorf("expected ValidationError for unknown rated department, got %v", err)
	}
}

func TestSubmissionsDuplicate(t *testing.T) {
	s := newTestStorage(t)
	d := seedDepartments(t, s, "IT", "HR")
	survey := createSurvey(t, s, d[1].ID)
	store := s.SubmissionsStorage()
	window := mustWindow(t, "2025-01-01", "2025-01-31")

	if err := store.Insert(newSubmission(survey, d[0].ID, window, 4, "")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := store.Insert(newSubmission(survey, d[0].ID, window, 5, ""))
	if !errors.As(err, new(model.DuplicateSubmissionError)) {
		t.Fatalf("expected DuplicateSubmissionError, got %v", err)
	}
	// a new window opens the pair again
	if err = store.Insert(newSubmission(survey, d[0].ID, mustWindow(t, "2025-02-01", "2025-02-28"), 5, "")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exists, err := store.Exists(d[0].ID, d[1].ID, window)
	if err != nil || !exists {
		t.Fatalf("expected submission to exist: %v", err)
	}
	exists, _ = store.Exists(d[1].ID, d[0].ID, window)
	if exists {
		t.Fatalf("reverse pair must not exist")
	}
	targets, err := store.SubmittedTargets(d[0].ID, window)
	if err != nil || len(targets) != 1 || targets[0] != d[1].ID {
		t.Fatalf("unexpected submitted targets %v, %v", targets, err)
	}
	mine, err := store.ListByUser("user-1")
	if err != nil || len(mine) != 2 {
		t.Fatalf("expected two submissions of user-1, got %d, %v", len(mine), err)
	}
	got, err := store.Get(mine[0].ID)
	if err != nil || len(got.Answers) != 2 {
		t.Fatalf("expected submission with answers, got %+v, %v", got, err)
	}
}

func TestSubmissionsSurviveWindowEdit(t *testing.T) {
	s := newTestStorage(t)
	d := seedDepartments(t, s, "IT", "HR")
	it, hr := d[0].ID, d[1].ID
	survey := createSurvey(t, s, hr)
	permissions := s.PermissionsStorage()
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	recorder := engine.NewRecorder(s.SurveysStorage(), permissions, s.SubmissionsStorage()).
		WithClock(func() time.Time { return now })

	january := mustWindow(t, "2025-01-01", "2025-01-31")
	if _, err := permissions.Save(0, []model.PermissionEdge{edge(it, hr)}, january); err != nil {
		t.Fatalf("could not save matrix: %v", err)
	}
	rating := float64(4)
	req := engine.SubmitRequest{
		SurveyID:              survey.ID,
		SubmitterDepartmentID: it,
		SubmitterUserID:       "user-1",
		Answers: []engine.Answer{
			{QuestionID: survey.Questions[0].ID, Rating: &rating},
			{QuestionID: survey.Questions[1].ID, Remarks: "keep going"},
		},
		OverallRating: 4,
	}
	if _, err := recorder.Submit(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	extended := mustWindow(t, "2025-01-01", "2025-02-01")
	if _, err := permissions.Save(1, []model.PermissionEdge{edge(it, hr)}, extended); err != nil {
		t.Fatalf("could not save matrix: %v", err)
	}
	eligible, err := recorder.Resolver().ResolveEligibility(it, now)
	if err != nil || len(eligible) != 0 {
		t.Fatalf("expected no eligible targets after the date edit, got %v, %v", eligible, err)
	}
	state, _, err := recorder.Resolver().PairState(it, hr, now)
	if err != nil || state != engine.StateSubmitted {
		t.Fatalf("expected pair to stay submitted, got %s, %v", state, err)
	}
	if _, err = recorder.Submit(req); !errors.As(err, new(model.DuplicateSubmissionError)) {
		t.Fatalf("expected DuplicateSubmissionError, got %v", err)
	}

	// the insert itself rejects a record dated into a window that already has one
	late := newSubmission(survey, it, extended, 5, "")
	late.SubmittedAt = time.Date(2025, 1, 20, 8, 0, 0, 0, time.UTC)
	if err = s.SubmissionsStorage().Insert(late); !errors.As(err, new(model.DuplicateSubmissionError)) {
		t.Fatalf("expected DuplicateSubmissionError from insert, got %v", err)
	}

	var count int64
	if err = s.DB().Model(&model.SurveySubmission{}).
		Where("submitter_department_id = ? AND rated_department_id = ?", it, hr).
		Count(&count).Error; err != nil || count != 1 {
		t.Fatalf("expected exactly one record, got %d, %v", count, err)
	}

	// records outside the window do not count
	if exists, _ := s.SubmissionsStorage().Exists(it, hr, mustWindow(t, "2025-02-01", "2025-02-28")); exists {
		t.Fatalf("january record must not count for february")
	}
}

func TestSubmissionsConcurrentInsert(t *testing.T) {
	s := newTestStorage(t)
	d := seedDepartments(t, s, "IT", "HR")
	survey := createSurvey(t, s, d[1].ID)
	store := s.SubmissionsStorage()
	window := mustWindow(t, "2025-01-01", "2025-01-31")

	const n = 4
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.Insert(newSubmission(survey, d[0].ID, window, 4, ""))
		}(i)
	}
	wg.Wait()

	var ok, duplicates int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.As(err, new(model.DuplicateSubmissionError)):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || duplicates != n-1 {
		t.Fatalf("expected exactly one insert to win, got %d ok and %d duplicates", ok, duplicates)
	}
}

func TestRemarks(t *testing.T) {
	s := newTestStorage(t)
	d := seedDepartments(t, s, "IT", "HR")
	survey := createSurvey(t, s, d[1].ID)
	window := mustWindow(t, "2025-01-01", "2025-01-31")
	sub := newSubmission(survey, d[0].ID, window, 2, "tickets stay open for weeks")
	if err := s.SubmissionsStorage().Insert(sub); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store := s.RemarksStorage()

	incoming, err := store.Incoming(d[1].ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(incoming) != 2 {
		t.Fatalf("expected 2 incoming remarks, got %+v", incoming)
	}
	if none, _ := store.Incoming(d[0].ID); len(none) != 0 {
		t.Fatalf("IT must not see remarks about HR: %+v", none)
	}

	response := model.RemarkResponse{
		SubmissionID:            sub.ID,
		QuestionID:              survey.Questions[0].ID,
		Explanation:             "understaffed",
		ActionPlan:              "hire",
		RespondedByDepartmentID: d[0].ID,
	}
	if _, _, err = store.Respond(response); !errors.As(err, new(model.NotEligibleError)) {
		t.Fatalf("expected NotEligibleError for a foreign department, got %v", err)
	}
	response.RespondedByDepartmentID = d[1].ID
	response.ActionPlan = " "
	if _, _, err = store.Respond(response); !errors.As(err, new(model.ValidationError)) {
		t.Fatalf("expected ValidationError for an empty action plan, got %v", err)
	}
	response.ActionPlan = "hire"
	stored, created, err := store.Respond(response)
	if err != nil || !created {
		t.Fatalf("expected response to be created, got %v, %v", created, err)
	}
	again, created, err := store.Respond(response)
	if err != nil || created || again.ID != stored.ID {
		t.Fatalf("expected the existing response, got %+v, %v, %v", again, created, err)
	}

	incoming, _ = store.Incoming(d[1].ID)
	if len(incoming) != 1 {
		t.Fatalf("expected one remaining incoming remark, got %+v", incoming)
	}
	outgoing, err := store.Outgoing(d[0].ID)
	if err != nil || len(outgoing) != 2 {
		t.Fatalf("expected 2 outgoing remarks, got %+v, %v", outgoing, err)
	}
	var responded int
	for _, r := range outgoing {
		if r.Response != nil {
			responded++
		}
	}
	if responded != 1 {
		t.Fatalf("expected one responded outgoing remark, got %d", responded)
	}
}

func TestDepartmentMetrics(t *testing.T) {
	s := newTestStorage(t)
	d := seedDepartments(t, s, "IT", "HR", "QA")
	survey := createSurvey(t, s, d[1].ID)
	window := mustWindow(t, "2025-01-01", "2025-01-31")
	for i, overall := range []float64{4, 3.5} {
		sub := newSubmission(survey, []uint{d[0].ID, d[2].ID}[i], window, overall, "")
		sub.Answers[1].Remarks = ""
		if err := s.SubmissionsStorage().Insert(sub); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	sub := newSubmission(survey, d[0].ID, mustWindow(t, "2025-02-01", "2025-02-28"), 3.33, "slow")
	sub.Answers[1].Remarks = ""
	if err := s.SubmissionsStorage().Insert(sub); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	metrics, err := s.ReportsStorage().DepartmentMetrics()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(metrics) != 3 || metrics[0].DepartmentName != "HR" {
		t.Fatalf("expected metrics ordered by name, got %+v", metrics)
	}
	hr := metrics[0]
	if hr.TotalSurveysReceived != 3 || hr.AverageRatingReceived != 3.61 || hr.UnrespondedRemarks != 1 {
		t.Fatalf("unexpected HR metrics %+v", hr)
	}
	if metrics[1].TotalSurveysReceived != 0 || metrics[1].AverageRatingReceived != 0 {
		t.Fatalf("unexpected IT metrics %+v", metrics[1])
	}
}

func TestSubmissionOverviews(t *testing.T) {
	s := newTestStorage(t)
	reports := s.ReportsStorage()

	summary, err := reports.Summary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalSubmissions != 0 || summary.AverageOverallRating != 0 || len(summary.Latest) != 0 {
		t.Fatalf("expected empty summary, got %+v", summary)
	}

	d := seedDepartments(t, s, "IT", "HR")
	survey := createSurvey(t, s, d[1].ID)
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 22; i++ {
		start := first.AddDate(0, 0, 7*i)
		window := mustWindow(t, start.Format(time.DateOnly), start.AddDate(0, 0, 6).Format(time.DateOnly))
		if err = s.SubmissionsStorage().Insert(newSubmission(survey, d[0].ID, window, float64(i%5+1), "")); err != nil {
			t.Fatalf("could not insert submission %d: %v", i, err)
		}
	}
	newest := first.AddDate(0, 0, 7*21).Add(10 * time.Hour)

	summary, err = reports.Summary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalSubmissions != 22 || summary.AverageOverallRating != 2.86 {
		t.Fatalf("unexpected summary figures %+v", summary)
	}
	if len(summary.Latest) != 5 {
		t.Fatalf("expected 5 latest submissions, got %d", len(summary.Latest))
	}
	latest := summary.Latest[0]
	if !latest.SubmittedAt.Equal(newest) || latest.OverallRating != 2 {
		t.Fatalf("expected newest submission first, got %+v", latest)
	}
	if latest.RatedDepartmentName != "HR" || latest.SubmitterDepartmentName != "IT" ||
		latest.SubmitterUserID != "user-1" || latest.SurveyID != survey.ID {
		t.Fatalf("unexpected listing %+v", latest)
	}

	recent, err := reports.Recent()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recent) != 20 {
		t.Fatalf("expected 20 recent submissions, got %d", len(recent))
	}
	for i := 1; i < len(recent); i++ {
		if recent[i].SubmittedAt.After(recent[i-1].SubmittedAt) {
			t.Fatalf("recent submissions are not ordered newest first: %v after %v",
				recent[i].SubmittedAt, recent[i-1].SubmittedAt)
		}
	}
	if oldest := first.AddDate(0, 0, 14).Add(10 * time.Hour); !recent[19].SubmittedAt.Equal(oldest) {
		t.Fatalf("expected the two oldest submissions to be cut, last is %v", recent[19].SubmittedAt)
	}
}

func TestKeyValue(t *testing.T) {
	s := newTestStorage(t)
	kv := s.KeyValue()

	var out string
	found, err := kv.GetAs(model.KeyValueScopeGlobal, "motd", &out)
	if err != nil || found {
		t.Fatalf("expected missing key, got %v, %v", found, err)
	}
	if err = kv.SetAny(model.KeyValueScopeGlobal, "motd", "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err = kv.SetAny(model.KeyValueScopeGlobal, "motd", "hello again"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found, err = kv.GetAs(model.KeyValueScopeGlobal, "motd", &out)
	if err != nil || !found || out != "hello again" {
		t.Fatalf("unexpected value %q, %v, %v", out, found, err)
	}
	if err = kv.Delete(model.KeyValueScopeGlobal, "motd"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err = kv.SetAny(model.KeyValueScopeGlobal, "motd", "back"); err != nil {
		t.Fatalf("setting a deleted key must work: %v", err)
	}
}

func TestUsers(t *testing.T) {
	s := newTestStorage(t)
	users := s.UsersStorage()

	if _, err := users.Create("admin", "secret", "Admin"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := users.Create("admin", "other", ""); !errors.As(err, new(model.AlreadyExistsError)) {
		t.Fatalf("expected AlreadyExistsError, got %v", err)
	}
	if _, err := users.Authenticate("admin", "secret"); err != nil {
		t.Fatalf("expected valid credentials: %v", err)
	}
	if _, err := users.Authenticate("admin", "wrong"); err == nil {
		t.Fatalf("expected invalid credentials")
	}
	disabled := true
	if _, err := users.Update("admin", nil, nil, &disabled); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := users.Authenticate("admin", "secret"); err == nil {
		t.Fatalf("disabled users must not authenticate")
	}
	if err := users.Delete("nobody"); !errors.As(err, new(model.NotFoundError)) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
