package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"cabinet-backend/models"
	"cabinet-backend/persistence"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type sentReminder struct {
	channel models.ReminderType
	to      string
	message string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentReminder
	err  error
}

func (f *fakeSender) Send(_ context.Context, channel models.ReminderType, to, message string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, sentReminder{channel: channel, to: to, message: message})
	return "SM123", nil
}

func TestSendReminderRecordsDispatch(t *testing.T) {
	sender := &fakeSender{}
	s := newTestStore(t, persistence.NewMemoryBackend(), WithReminderSender(sender))
	p := addPatient(t, s, "Youssef", "El Amrani")
	a := addAppointment(t, s, p.ID, "2026-03-11", "10:00", "", 300)

	out, err := s.SendReminder(context.Background(), a.ID, models.ReminderWhatsApp)
	require.NoError(t, err)
	assert.Equal(t, "SM123", out.ProviderID)
	assert.Equal(t, p.Phone, out.To)
	assert.Contains(t, out.Message, "Youssef")
	assert.Contains(t, out.Message, "2026-03-11")

	require.Len(t, sender.sent, 1)
	assert.Equal(t, models.ReminderWhatsApp, sender.sent[0].channel)

	got, _ := s.AppointmentByID(a.ID)
	assert.True(t, got.ReminderSent)
	assert.Equal(t, models.ReminderWhatsApp, got.ReminderType)
	assert.True(t, hasNotification(s.Notifications(), "Rappel WHATSAPP envoyé", models.NotifySuccess))
}

func TestSendReminderFailureRecordsNothing(t *testing.T) {
	sender := &fakeSender{err: errors.New("provider down")}
	s := newTestStore(t, persistence.NewMemoryBackend(), WithReminderSender(sender))
	p := addPatient(t, s, "Youssef", "El Amrani")
	a := addAppointment(t, s, p.ID, "2026-03-11", "10:00", "", 300)

	_, err := s.SendReminder(context.Background(), a.ID, models.ReminderSMS)
	require.Error(t, err)

	got, _ := s.AppointmentByID(a.ID)
	assert.False(t, got.ReminderSent)
	assert.True(t, hasNotification(s.Notifications(), "Échec du rappel SMS", models.NotifyError))
}

func TestSendReminderNeedsContact(t *testing.T) {
	s := newTestStore(t, persistence.NewMemoryBackend(), WithReminderSender(&fakeSender{}))
	ctx := context.Background()
	p, err := s.AddPatient(ctx, models.PatientInput{FirstName: "Mehdi", LastName: "Tazi", Phone: "0612345678"})
	require.NoError(t, err)
	a := addAppointment(t, s, p.ID, "2026-03-11", "10:00", "", 300)

	_, err = s.SendReminder(ctx, a.ID, models.ReminderEmail)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.SendReminder(ctx, a.ID, "pigeon")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.SendReminder(ctx, "ghost", models.ReminderSMS)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDueRemindersWindow(t *testing.T) {
	s := newTestStore(t, persistence.NewMemoryBackend())
	p := addPatient(t, s, "Youssef", "El Amrani")

	today := addAppointment(t, s, p.ID, "2026-03-10", "15:00", "", 300)
	tomorrow := addAppointment(t, s, p.ID, "2026-03-11", "08:00", "", 300)
	// beyond the 24h window, already started, closed
	addAppointment(t, s, p.ID, "2026-03-11", "10:00", "", 300)
	addAppointment(t, s, p.ID, "2026-03-10", "08:00", "", 300)
	addAppointment(t, s, p.ID, "2026-03-10", "16:00", models.StatusCancelled, 300)

	var ids []string
	for _, a := range s.DueReminders(testNow) {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{today.ID, tomorrow.ID}, ids)

	cfg := s.CabinetConfig().ReminderSettings
	cfg.Enabled = false
	_, err := s.UpdateCabinetConfig(context.Background(), models.CabinetConfigUpdate{ReminderSettings: &cfg})
	require.NoError(t, err)
	assert.Empty(t, s.DueReminders(testNow))
}

func TestReminderServiceSendsDueReminders(t *testing.T) {
	sender := &fakeSender{}
	s := newTestStore(t, persistence.NewMemoryBackend(), WithReminderSender(sender))
	p := addPatient(t, s, "Youssef", "El Amrani")
	addAppointment(t, s, p.ID, "2026-03-10", "15:00", "", 300)
	addAppointment(t, s, p.ID, "2026-03-11", "08:00", "", 300)

	svc := NewReminderService(s, "", zerolog.Nop())
	assert.Equal(t, 2, svc.SendDueReminders(context.Background()))
	assert.Empty(t, s.DueReminders(testNow))
	for _, r := range sender.sent {
		assert.Equal(t, models.ReminderWhatsApp, r.channel)
	}

	assert.Zero(t, svc.SendDueReminders(context.Background()))
}

func TestReminderServiceFallsBackToSMS(t *testing.T) {
	sender := &fakeSender{}
	s := newTestStore(t, persistence.NewMemoryBackend(), WithReminderSender(sender))
	ctx := context.Background()
	p := addPatient(t, s, "Youssef", "El Amrani")
	a := addAppointment(t, s, p.ID, "2026-03-10", "15:00", "", 300)

	none := models.ReminderType("")
	require.NoError(t, s.UpdateAppointment(ctx, a.ID, models.AppointmentUpdate{ReminderType: &none}))
	cfg := s.CabinetConfig().ReminderSettings
	cfg.Channel = ""
	_, err := s.UpdateCabinetConfig(ctx, models.CabinetConfigUpdate{ReminderSettings: &cfg})
	require.NoError(t, err)

	svc := NewReminderService(s, "", zerolog.Nop())
	assert.Equal(t, 1, svc.SendDueReminders(ctx))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, models.ReminderSMS, sender.sent[0].channel)
	assert.Empty(t, s.DueReminders(testNow))
}

func TestReminderSchedulerRejectsBadSchedule(t *testing.T) {
	s := newTestStore(t, persistence.NewMemoryBackend())
	svc := NewReminderService(s, "every tuesday", zerolog.Nop())
	assert.Error(t, svc.StartScheduler())

	svc = NewReminderService(s, "", zerolog.Nop())
	require.NoError(t, svc.StartScheduler())
	svc.Stop()
}

type fakeMessages struct {
	params *twilioApi.CreateMessageParams
}

func (f *fakeMessages) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = params
	sid := "SMfake"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func TestTwilioSenderAddressesChannels(t *testing.T) {
	api := &fakeMessages{}
	sender := &TwilioSender{api: api, phoneNumber: "+15550001", whatsAppNumber: "+15550002"}
	ctx := context.Background()

	id, err := sender.Send(ctx, models.ReminderWhatsApp, "+212612345678", "Bonjour")
	require.NoError(t, err)
	assert.Equal(t, "SMfake", id)
	assert.Equal(t, "whatsapp:+212612345678", *api.params.To)
	assert.Equal(t, "whatsapp:+15550002", *api.params.From)
	assert.Equal(t, "Bonjour", *api.params.Body)

	_, err = sender.Send(ctx, models.ReminderSMS, "+212612345678", "Bonjour")
	require.NoError(t, err)
	assert.Equal(t, "+212612345678", *api.params.To)
	assert.Equal(t, "+15550001", *api.params.From)

	_, err = sender.Send(ctx, models.ReminderEmail, "a@b.ma", "Bonjour")
	assert.ErrorIs(t, err, ErrChannelUnsupported)
}

func TestChannelRouter(t *testing.T) {
	sms := &fakeSender{}
	router := ChannelRouter{Senders: map[models.ReminderType]ReminderSender{models.ReminderSMS: sms}}
	ctx := context.Background()

	_, err := router.Send(ctx, models.ReminderSMS, "+212612345678", "hi")
	require.NoError(t, err)
	assert.Len(t, sms.sent, 1)

	_, err = router.Send(ctx, models.ReminderEmail, "a@b.ma", "hi")
	assert.ErrorIs(t, err, ErrChannelUnsupported)

	router.Default = NewLogSender(zerolog.Nop())
	id, err := router.Send(ctx, models.ReminderEmail, "a@b.ma", "hi")
	require.NoError(t, err)
	assert.Contains(t, id, "log-")
}
