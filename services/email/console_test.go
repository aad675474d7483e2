package emailsvc

import (
	"bytes"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/studman/core"
	appfs "github.com/trezcool/studman/fs"
	logsvc "github.com/trezcool/studman/services/logger"
)

func newTestMock(t *testing.T) *Mock {
	t.Helper()
	conf := &core.Config{
		AppName:          "studman",
		TestMode:         true,
		FrontendBaseURL:  "http://front.test",
		DefaultFromEmail: mail.Address{Name: "Studman", Address: "noreply@studman.io"},
	}
	tmpls, err := core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, conf)
	require.NoError(t, err)
	return NewMock(conf, tmpls, logsvc.New(&bytes.Buffer{}, conf))
}

func TestMock_SendMessages(t *testing.T) {
	to := []mail.Address{{Name: "Jane", Address: "jane@test.cd"}}

	tests := []struct {
		name     string
		msg      *core.EmailMessage
		wantSent bool
		wantText string
	}{
		{name: "no recipients", msg: &core.EmailMessage{Subject: "Hi", BodyStr: "hello"}},
		{name: "no content", msg: &core.EmailMessage{To: to, Subject: "Hi"}},
		{name: "plain body", msg: &core.EmailMessage{To: to, Subject: "Hi", BodyStr: "hello"}, wantSent: true, wantText: "hello"},
		{
			name: "templated",
			msg: &core.EmailMessage{
				To:           to,
				Subject:      "Your account has been created",
				TemplateName: "account_created",
				TemplateData: map[string]string{
					"FullName":     "Jane",
					"Email":        "jane@test.cd",
					"Role":         "student",
					"TempPassword": "s3cr3t",
				},
			},
			wantSent: true,
			wantText: "Temporary password: s3cr3t",
		},
		{
			name: "missing template data",
			msg: &core.EmailMessage{
				To:           to,
				Subject:      "Your account has been created",
				TemplateName: "account_created",
				TemplateData: map[string]string{"FullName": "Jane"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestMock(t)
			svc.SendMessages(tt.msg)

			sent := svc.Sent()
			if !tt.wantSent {
				assert.Empty(t, sent)
				return
			}
			require.Len(t, sent, 1)
			assert.Contains(t, sent[0].TextContent, tt.wantText)
		})
	}
}

func TestConsoleService_format(t *testing.T) {
	svc := newTestMock(t)
	msg := core.EmailMessage{
		To:          []mail.Address{{Address: "a@test.cd"}, {Address: "b@test.cd"}},
		Subject:     "Hello",
		TextContent: "plain",
		HTMLContent: "<p>html</p>",
	}

	out := svc.format(msg)
	assert.Contains(t, out, "Subject: [studman] Hello\r\n")
	assert.Contains(t, out, "To: <a@test.cd>, <b@test.cd>\r\n")
	assert.Contains(t, out, "multipart/alternative; boundary=")
	assert.Contains(t, out, "plain")
	assert.Contains(t, out, "<p>html</p>")
	assert.False(t, strings.Contains(out, "CC:"))
}
