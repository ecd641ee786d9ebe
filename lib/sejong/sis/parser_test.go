package sis

import (
	"sejongauth/lib/sejong"
	"sejongauth/lib/sejong/sejongtest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseUserInfo(t *testing.T) {
	info, err := ParseStudentInfo(sejongtest.UserInfoJson)
	require.NoError(t, err)
	require.Equal(t, sejong.StudentInfo{
		Major:     "컴퓨터공학과",
		StudentId: "20012345",
		Name:      "홍길동",
	}, info)

	contact, err := ParseContactInfo(sejongtest.UserInfoJson)
	require.NoError(t, err)
	require.Equal(t, sejong.ContactInfo{
		Email:       "gildong@sju.ac.kr",
		PhoneNumber: "010-1234-5678",
		EnglishName: "HONG GILDONG",
	}, contact)
}

func TestPhoneNumber(t *testing.T) {
	cases := []struct {
		name     string
		json     string
		expected string
	}{
		{
			name:     "all parts",
			json:     `{"dm_UserInfoGam":{"USER_PHONE_NO1":"010","USER_PHONE_NO2":"1234","USER_PHONE_NO3":"5678"}}`,
			expected: "010-1234-5678",
		},
		{
			name:     "first part only",
			json:     `{"dm_UserInfoGam":{"USER_PHONE_NO1":"010","USER_PHONE_NO2":"","USER_PHONE_NO3":""}}`,
			expected: "010",
		},
		{
			name:     "missing first part",
			json:     `{"dm_UserInfoGam":{"USER_PHONE_NO2":"1234","USER_PHONE_NO3":"5678"}}`,
			expected: "1234-5678",
		},
		{
			name:     "middle part blank",
			json:     `{"dm_UserInfoGam":{"USER_PHONE_NO1":"010","USER_PHONE_NO2":"  ","USER_PHONE_NO3":"5678"}}`,
			expected: "010-5678",
		},
		{
			name:     "all blank",
			json:     `{"dm_UserInfoGam":{"USER_PHONE_NO1":"","USER_PHONE_NO2":"","USER_PHONE_NO3":""}}`,
			expected: "",
		},
		{
			name:     "null parts",
			json:     `{"dm_UserInfoGam":{"USER_PHONE_NO1":null,"USER_PHONE_NO2":"1234","USER_PHONE_NO3":null}}`,
			expected: "1234",
		},
		{
			name:     "no namespace",
			json:     `{}`,
			expected: "",
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			phone, err := ParsePhoneNumber(test.json)
			require.NoError(t, err)
			require.Equal(t, test.expected, phone)
		})
	}
}

func TestFieldFallbacks(t *testing.T) {
	t.Run("major from dm_UserInfoSch", func(t *testing.T) {
		major, err := ParseMajor(`{
			"dm_UserInfo": {"INTG_USR_NO": "20171234", "INTG_USR_NM": "홍길동"},
			"dm_UserInfoGam": {"USER_EMAIL": "test@example.com"},
			"dm_UserInfoSch": {"DEPT_NM": "소프트웨어학과"}
		}`)
		require.NoError(t, err)
		require.Equal(t, "소프트웨어학과", major)
	})

	t.Run("blank major falls back", func(t *testing.T) {
		major, err := ParseMajor(`{
			"dm_UserInfoGam": {"DEPT_NM": " "},
			"dm_UserInfoSch": {"DEPT_NM": "X"}
		}`)
		require.NoError(t, err)
		require.Equal(t, "X", major)
	})

	t.Run("english name from dm_UserInfoSch", func(t *testing.T) {
		name, err := ParseEnglishName(`{
			"dm_UserInfo": {"INTG_USR_NO": "20171234"},
			"dm_UserInfoGam": {"USER_EMAIL": "test@example.com"},
			"dm_UserInfoSch": {"NM_ENG": "Hong Gildong Backup"}
		}`)
		require.NoError(t, err)
		require.Equal(t, "Hong Gildong Backup", name)
	})

	t.Run("primary source wins", func(t *testing.T) {
		name, err := ParseEnglishName(sejongtest.UserInfoJson)
		require.NoError(t, err)
		require.Equal(t, "HONG GILDONG", name)
	})

	t.Run("numbers are read as text", func(t *testing.T) {
		info, err := ParseStudentInfo(`{"dm_UserInfo": {"INTG_USR_NO": 20171234, "INTG_USR_NM": "홍길동"}}`)
		require.NoError(t, err)
		require.Equal(t, "20171234", info.StudentId)
		require.Empty(t, info.Major)
	})
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		json string
	}{
		{name: "missing dm_UserInfo", json: `{"dm_UserInfoGam": {"DEPT_NM": "컴퓨터공학과"}}`},
		{name: "empty object", json: `{}`},
		{name: "invalid json", json: `{invalid json}`},
		{name: "not an object", json: `[1, 2, 3]`},
		{name: "null", json: `null`},
		{name: "empty", json: ``},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			_, err := ParseStudentInfo(test.json)
			require.ErrorIs(t, err, sejong.ErrParseError)
		})
	}
}

func TestOptionalFieldsWithoutUserInfo(t *testing.T) {
	raw := `{"dm_UserInfoGam": {"USER_EMAIL": "test@example.com", "USER_PHONE_NO1": "010"}}`

	contact, err := ParseContactInfo(raw)
	require.NoError(t, err)
	require.Equal(t, sejong.ContactInfo{Email: "test@example.com", PhoneNumber: "010"}, contact)

	_, err = ParseContactInfo(`{invalid`)
	require.ErrorIs(t, err, sejong.ErrParseError)
}

func TestJoinPhoneNumber(t *testing.T) {
	cases := []struct {
		parts    [3]string
		expected string
	}{
		{parts: [3]string{"010", "1234", "5678"}, expected: "010-1234-5678"},
		{parts: [3]string{"010", "", ""}, expected: "010"},
		{parts: [3]string{"", "1234", ""}, expected: "1234"},
		{parts: [3]string{"", "", "5678"}, expected: "5678"},
		{parts: [3]string{"010", "", "5678"}, expected: "010-5678"},
		{parts: [3]string{"", "1234", "5678"}, expected: "1234-5678"},
		{parts: [3]string{"010", "1234", " "}, expected: "010-1234"},
		{parts: [3]string{"", "", ""}, expected: ""},
	}
	for _, test := range cases {
		require.Equal(t, test.expected, JoinPhoneNumber(test.parts[0], test.parts[1], test.parts[2]), test.parts)
	}
}

func TestIdentityFields(t *testing.T) {
	raw := `{"dm_UserInfo": {"INTG_USR_NO": 20012345, "INTG_USR_NM": " 홍길동 "}}`

	studentId, err := ParseStudentId(raw)
	require.NoError(t, err)
	require.Equal(t, "20012345", studentId)

	name, err := ParseName(raw)
	require.NoError(t, err)
	require.Equal(t, "홍길동", name)

	_, err = ParseName(`{"dm_UserInfoSch": {}}`)
	require.ErrorIs(t, err, sejong.ErrParseError)
}
