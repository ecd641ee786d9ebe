package sis

import (
	"bytes"
	"encoding/json"
	"sejongauth/lib/sejong"
	"sejongauth/lib/textutil"
	"strings"
)

const (
	nsUserInfo    = "dm_UserInfo"
	nsUserInfoGam = "dm_UserInfoGam"
	nsUserInfoSch = "dm_UserInfoSch"
)

type fieldPath struct {
	Namespace string
	Key       string
}

// chain is an ordered list of sources for one field, the first non blank
// value wins.
type chain []fieldPath

var (
	majorChain       = chain{{nsUserInfoGam, "DEPT_NM"}, {nsUserInfoSch, "DEPT_NM"}}
	englishNameChain = chain{{nsUserInfo, "INTG_ENG_NM"}, {nsUserInfoSch, "NM_ENG"}}
	studentIdChain   = chain{{nsUserInfo, "INTG_USR_NO"}}
	nameChain        = chain{{nsUserInfo, "INTG_USR_NM"}}
	emailChain       = chain{{nsUserInfoGam, "USER_EMAIL"}}

	phoneParts = []fieldPath{
		{nsUserInfoGam, "USER_PHONE_NO1"},
		{nsUserInfoGam, "USER_PHONE_NO2"},
		{nsUserInfoGam, "USER_PHONE_NO3"},
	}
)

// Document is a decoded initUserInfo response.
type Document struct {
	root map[string]any
}

// ParseDocument decodes the initUserInfo response, malformed json or a
// root that isn't an object is a ParseError.
func ParseDocument(raw string) (Document, error) {
	dec := json.NewDecoder(bytes.NewBufferString(raw))
	dec.UseNumber()
	var root map[string]any
	err := dec.Decode(&root)
	if err != nil {
		return Document{}, sejong.Errorf(sejong.ParseError, "decode user info: %w", err)
	}
	if root == nil {
		return Document{}, sejong.Errorf(sejong.ParseError, "user info is not an object")
	}
	return Document{root: root}, nil
}

func (d Document) has(namespace string) bool {
	_, ok := d.root[namespace]
	return ok
}

func (d Document) text(p fieldPath) string {
	ns, ok := d.root[p.Namespace].(map[string]any)
	if !ok {
		return ""
	}
	switch v := ns[p.Key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	}
	return ""
}

func (d Document) resolve(c chain) string {
	for _, p := range c {
		value := d.text(p)
		if !textutil.IsBlank(value) {
			return value
		}
	}
	return ""
}

func (d Document) Major() string {
	return d.resolve(majorChain)
}

func (d Document) EnglishName() string {
	return d.resolve(englishNameChain)
}

func (d Document) Email() string {
	return d.resolve(emailChain)
}

// PhoneNumber joins the three phone segments with '-', skipping blank ones.
func (d Document) PhoneNumber() string {
	return JoinPhoneNumber(d.text(phoneParts[0]), d.text(phoneParts[1]), d.text(phoneParts[2]))
}

func JoinPhoneNumber(no1, no2, no3 string) string {
	return textutil.JoinNonBlank("-", no1, no2, no3)
}

// StudentId fails with ParseError when dm_UserInfo is missing.
func (d Document) StudentId() (string, error) {
	if !d.has(nsUserInfo) {
		return "", missingUserInfo()
	}
	return d.resolve(studentIdChain), nil
}

// Name fails with ParseError when dm_UserInfo is missing.
func (d Document) Name() (string, error) {
	if !d.has(nsUserInfo) {
		return "", missingUserInfo()
	}
	return d.resolve(nameChain), nil
}

func missingUserInfo() error {
	return sejong.Errorf(sejong.ParseError, "dm_UserInfo 필드를 찾을 수 없습니다.")
}

// StudentInfo reads the identity fields. The academic system has no grade
// and its status code is not decoded, both are left empty.
func (d Document) StudentInfo() (sejong.StudentInfo, error) {
	studentId, err := d.StudentId()
	if err != nil {
		return sejong.StudentInfo{}, err
	}
	name, err := d.Name()
	if err != nil {
		return sejong.StudentInfo{}, err
	}
	return sejong.StudentInfo{
		Major:     d.Major(),
		StudentId: studentId,
		Name:      name,
	}, nil
}

func (d Document) ContactInfo() sejong.ContactInfo {
	return sejong.ContactInfo{
		Email:       d.Email(),
		PhoneNumber: d.PhoneNumber(),
		EnglishName: d.EnglishName(),
	}
}

func ParseStudentInfo(raw string) (sejong.StudentInfo, error) {
	doc, err := ParseDocument(raw)
	if err != nil {
		return sejong.StudentInfo{}, err
	}
	return doc.StudentInfo()
}

func ParseContactInfo(raw string) (sejong.ContactInfo, error) {
	doc, err := ParseDocument(raw)
	if err != nil {
		return sejong.ContactInfo{}, err
	}
	return doc.ContactInfo(), nil
}

func ParseEmail(raw string) (string, error) {
	doc, err := ParseDocument(raw)
	if err != nil {
		return "", err
	}
	return doc.Email(), nil
}

func ParsePhoneNumber(raw string) (string, error) {
	doc, err := ParseDocument(raw)
	if err != nil {
		return "", err
	}
	return doc.PhoneNumber(), nil
}

func ParseEnglishName(raw string) (string, error) {
	doc, err := ParseDocument(raw)
	if err != nil {
		return "", err
	}
	return doc.EnglishName(), nil
}

func ParseMajor(raw string) (string, error) {
	doc, err := ParseDocument(raw)
	if err != nil {
		return "", err
	}
	return doc.Major(), nil
}

func ParseStudentId(raw string) (string, error) {
	doc, err := ParseDocument(raw)
	if err != nil {
		return "", err
	}
	return doc.StudentId()
}

func ParseName(raw string) (string, error) {
	doc, err := ParseDocument(raw)
	if err != nil {
		return "", err
	}
	return doc.Name()
}
