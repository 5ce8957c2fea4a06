package emailsvc

import (
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmsfather/CampusWoodieVer2/core"
	"github.com/filmsfather/CampusWoodieVer2/tests"
)

func TestSendgridService_prepare(t *testing.T) {
	conf := testutil.Config()
	svc := NewSendgridService(conf, testutil.NewLogger(t)).(*sendgridService)
	lee := mail.Address{Name: "Student Lee", Address: "lee@test.kr"}
	park := mail.Address{Name: "Teacher Park", Address: "park@test.kr"}

	tests := []struct {
		name       string
		msg        core.EmailMessage
		categories []string
		contents   int
	}{
		{
			name:       "reminder",
			msg:        core.EmailMessage{To: []mail.Address{lee}, Subject: "3 question(s) to review", TemplateName: "review_reminder", TextContent: "hi", HTMLContent: "<p>hi</p>"},
			categories: []string{"review_reminder"},
			contents:   2,
		},
		{
			name:     "plain message",
			msg:      core.EmailMessage{To: []mail.Address{lee}, Cc: []mail.Address{park}, Subject: "hello", TextContent: "hi"},
			contents: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := svc.prepare(tt.msg)
			assert.Equal(t, tt.categories, m.Categories)
			assert.Len(t, m.Content, tt.contents)
			assert.Equal(t, conf.DefaultFromEmail.Address, m.From.Address)
			require.Len(t, m.Personalizations, 1)
			p := m.Personalizations[0]
			assert.Equal(t, "[Campus Woodie] "+tt.msg.Subject, p.Subject)
			require.Len(t, p.To, 1)
			assert.Equal(t, "lee@test.kr", p.To[0].Address)
			assert.Len(t, p.CC, len(tt.msg.Cc))
		})
	}
}
