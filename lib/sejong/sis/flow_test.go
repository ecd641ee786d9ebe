package sis

import (
	"context"
	"net/http"
	"sejongauth/lib/sejong"
	"sejongauth/lib/sejong/sejongtest"
	"sejongauth/lib/telemetry"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScrape(t *testing.T) {
	telemetry.SetupForTesting(t, "sis")

	portal := sejongtest.New(t)
	rec := &telemetry.Recorder{}

	result, err := NewFlow(portal.Config(), rec).Scrape(context.Background(), portal.Credentials())
	require.NoError(t, err)
	require.Equal(t, "20012345", result.StudentInfo.StudentId)
	require.Equal(t, "010-1234-5678", result.ContactInfo.PhoneNumber)
	require.Equal(t, sejongtest.UserInfoJson, result.Json)

	expected, err := EncodeAddParam(EmptyAddParam())
	require.NoError(t, err)
	require.Equal(t, []string{expected}, portal.AddParams())
	require.EqualValues(t, 3, portal.Requests())
	require.Empty(t, rec.Find("broken", ""))
}

func TestScrapeFailures(t *testing.T) {
	cases := []struct {
		name     string
		setup    func(p *sejongtest.Portal)
		kind     sejong.Kind
		reportId string
	}{
		{
			name:     "wrong password",
			setup:    func(p *sejongtest.Portal) { p.Password = "something-else" },
			kind:     sejong.AuthenticationFailed,
			reportId: report_flow_user_info,
		},
		{
			name:     "unauthorized regardless of body",
			setup:    func(p *sejongtest.Portal) { p.UserInfoStatus = http.StatusUnauthorized },
			kind:     sejong.AuthenticationFailed,
			reportId: report_flow_user_info,
		},
		{
			name:     "sso page rejected",
			setup:    func(p *sejongtest.Portal) { p.SisSsoStatus = http.StatusForbidden },
			kind:     sejong.SessionError,
			reportId: report_flow_sso,
		},
		{
			name:     "api error",
			setup:    func(p *sejongtest.Portal) { p.UserInfoStatus = http.StatusInternalServerError },
			kind:     sejong.DataFetchFailed,
			reportId: report_flow_user_info,
		},
		{
			name:     "empty body",
			setup:    func(p *sejongtest.Portal) { p.UserInfoJson = "" },
			kind:     sejong.DataFetchFailed,
			reportId: report_flow_user_info,
		},
		{
			name:     "malformed json",
			setup:    func(p *sejongtest.Portal) { p.UserInfoJson = "<html>error</html>" },
			kind:     sejong.ParseError,
			reportId: report_flow_parse,
		},
		{
			name:     "missing dm_UserInfo",
			setup:    func(p *sejongtest.Portal) { p.UserInfoJson = `{"dm_UserInfoGam":{}}` },
			kind:     sejong.ParseError,
			reportId: report_flow_parse,
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			portal := sejongtest.New(t)
			creds := portal.Credentials()
			test.setup(portal)
			rec := &telemetry.Recorder{}

			_, err := NewFlow(portal.Config(), rec).Scrape(context.Background(), creds)
			require.Error(t, err)
			require.Equal(t, test.kind, sejong.KindOf(err), err.Error())
			require.NotEmpty(t, rec.Find("", test.reportId))
		})
	}
}

const contactOnlyJson = `{"dm_UserInfoGam": {"USER_EMAIL": "a@b.kr", "USER_PHONE_NO1": "010", "USER_PHONE_NO2": "1", "USER_PHONE_NO3": "2"}}`

func TestScrapeContact(t *testing.T) {
	portal := sejongtest.New(t)
	creds := portal.Credentials()
	portal.UserInfoJson = contactOnlyJson
	rec := &telemetry.Recorder{}
	flow := NewFlow(portal.Config(), rec)

	result, err := flow.ScrapeContact(context.Background(), creds)
	require.NoError(t, err)
	require.Equal(t, sejong.ContactInfo{Email: "a@b.kr", PhoneNumber: "010-1-2"}, result.ContactInfo)
	require.Equal(t, sejong.StudentInfo{}, result.StudentInfo)
	require.Equal(t, contactOnlyJson, result.Json)
	require.Empty(t, rec.Find("", report_flow_parse))

	_, err = flow.Scrape(context.Background(), creds)
	require.ErrorIs(t, err, sejong.ErrParseError)

	portal.UserInfoJson = "<html>error</html>"
	_, err = flow.ScrapeContact(context.Background(), creds)
	require.ErrorIs(t, err, sejong.ErrParseError)
}

func TestUserInfoIsKeptVerbatim(t *testing.T) {
	portal := sejongtest.New(t)
	creds := portal.Credentials()
	portal.UserInfoJson = "\n" + sejongtest.UserInfoJson + "  \n"

	raw, err := NewFlow(portal.Config(), &telemetry.Recorder{}).FetchUserInfo(context.Background(), creds)
	require.NoError(t, err)
	require.Equal(t, portal.UserInfoJson, raw)
}
