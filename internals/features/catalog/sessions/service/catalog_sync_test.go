package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	model "athletiq_backend/internals/features/catalog/sessions/model"
	stripegw "athletiq_backend/internals/platform/stripe"
)

type fakeGateway struct {
	toggleCalls []struct {
		productID string
		active    bool
	}
	toggleErr    error
	rollbackErr  error
	createErr    error
	deactivated  []string
	createdProds int
}

func (f *fakeGateway) CreateProductWithPrice(_ context.Context, in stripegw.ProductInput) (string, string, error) {
	if f.createErr != nil {
		return "", "", f.createErr
	}
	f.createdProds++
	return "prod_test", "price_test", nil
}

func (f *fakeGateway) UpdateProduct(context.Context, string, stripegw.ProductInput) error {
	return nil
}

func (f *fakeGateway) ReplacePrice(context.Context, string, string, int64, string) (string, error) {
	return "price_new", nil
}

func (f *fakeGateway) SetProductActive(_ context.Context, productID string, active bool) error {
	f.toggleCalls = append(f.toggleCalls, struct {
		productID string
		active    bool
	}{productID, active})
	if !active {
		f.deactivated = append(f.deactivated, productID)
	}
	// the first toggle attempt may fail; the rollback uses a separate error
	if len(f.toggleCalls) == 1 && f.toggleErr != nil {
		return f.toggleErr
	}
	if len(f.toggleCalls) == 2 && f.rollbackErr != nil {
		return f.rollbackErr
	}
	return nil
}

type fakeStore struct {
	session      *model.TrainingSessionModel
	insertErr    error
	updateErr    error
	activeStates []bool
}

func (f *fakeStore) FindSession(context.Context, uuid.UUID) (*model.TrainingSessionModel, error) {
	if f.session == nil {
		return nil, errors.New("not found")
	}
	cp := *f.session
	return &cp, nil
}

func (f *fakeStore) InsertSession(_ context.Context, m *model.TrainingSessionModel) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.session = m
	return nil
}

func (f *fakeStore) SaveSession(_ context.Context, m *model.TrainingSessionModel) error {
	f.session = m
	return nil
}

func (f *fakeStore) UpdateSessionActive(_ context.Context, _ uuid.UUID, active bool) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.activeStates = append(f.activeStates, active)
	f.session.SessionIsActive = active
	return nil
}

func (f *fakeStore) ReplaceOccurrences(context.Context, uuid.UUID, []model.SessionOccurrenceModel) error {
	return nil
}

func newTestSession(active bool) *model.TrainingSessionModel {
	return &model.TrainingSessionModel{
		SessionID:              uuid.New(),
		SessionName:            "QB Fundamentals",
		SessionPriceCents:      7500,
		SessionCurrency:        "usd",
		SessionIsActive:        active,
		SessionStripeProductID: "prod_existing",
		SessionStripePriceID:   "price_existing",
	}
}

func TestSetActiveNoopWhenAlreadyInDesiredState(t *testing.T) {
	gw := &fakeGateway{}
	st := &fakeStore{session: newTestSession(true)}
	svc := NewSyncService(st, gw)

	if err := svc.SetActive(context.Background(), st.session.SessionID, true); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if len(gw.toggleCalls) != 0 {
		t.Fatalf("expected no remote call on idempotent toggle, got %d", len(gw.toggleCalls))
	}
}

func TestSetActiveRemoteFirstThenLocal(t *testing.T) {
	gw := &fakeGateway{}
	st := &fakeStore{session: newTestSession(true)}
	svc := NewSyncService(st, gw)

	if err := svc.SetActive(context.Background(), st.session.SessionID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if len(gw.toggleCalls) != 1 || gw.toggleCalls[0].active {
		t.Fatalf("expected one remote deactivate call, got %+v", gw.toggleCalls)
	}
	if st.session.SessionIsActive {
		t.Fatal("local flag not updated")
	}
}

func TestSetActiveRemoteFailureLeavesLocalUntouched(t *testing.T) {
	gw := &fakeGateway{toggleErr: errors.New("stripe down")}
	st := &fakeStore{session: newTestSession(true)}
	svc := NewSyncService(st, gw)

	if err := svc.SetActive(context.Background(), st.session.SessionID, false); err == nil {
		t.Fatal("expected error")
	}
	if len(st.activeStates) != 0 {
		t.Fatal("local state must not change when the remote toggle fails")
	}
}

func TestSetActiveLocalFailureRollsBackRemote(t *testing.T) {
	gw := &fakeGateway{}
	st := &fakeStore{session: newTestSession(true), updateErr: errors.New("db down")}
	svc := NewSyncService(st, gw)

	if err := svc.SetActive(context.Background(), st.session.SessionID, false); err == nil {
		t.Fatal("expected error")
	}
	if len(gw.toggleCalls) != 2 {
		t.Fatalf("expected toggle + rollback, got %d calls", len(gw.toggleCalls))
	}
	if !gw.toggleCalls[1].active {
		t.Fatal("rollback must restore the prior active value")
	}
}

func TestSetActiveRollbackFailureStillReturnsOriginalError(t *testing.T) {
	gw := &fakeGateway{rollbackErr: errors.New("stripe down too")}
	st := &fakeStore{session: newTestSession(true), updateErr: errors.New("db down")}
	svc := NewSyncService(st, gw)

	err := svc.SetActive(context.Background(), st.session.SessionID, false)
	if err == nil || !strings.Contains(err.Error(), "update local active flag") {
		t.Fatalf("expected local update error, got %v", err)
	}
}

func TestCreateSessionCleansUpRemoteOnLocalFailure(t *testing.T) {
	gw := &fakeGateway{}
	st := &fakeStore{insertErr: errors.New("insert failed")}
	svc := NewSyncService(st, gw)

	m := newTestSession(true)
	if err := svc.CreateSession(context.Background(), m); err == nil {
		t.Fatal("expected error")
	}
	if len(gw.deactivated) != 1 || gw.deactivated[0] != "prod_test" {
		t.Fatalf("orphaned remote product not deactivated: %+v", gw.deactivated)
	}
}

func TestCreateSessionLinksStripeIDs(t *testing.T) {
	gw := &fakeGateway{}
	st := &fakeStore{}
	svc := NewSyncService(st, gw)

	m := &model.TrainingSessionModel{SessionName: "Camp", SessionPriceCents: 5000, SessionCurrency: "usd"}
	if err := svc.CreateSession(context.Background(), m); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if m.SessionStripeProductID != "prod_test" || m.SessionStripePriceID != "price_test" {
		t.Fatalf("stripe ids not recorded: %+v", m)
	}
}
