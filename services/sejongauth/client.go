package sejongauth

import (
	"context"
	"sejongauth/lib/sejong"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls a remote AuthService.
type Client struct {
	authenticate    *connect.Client[structpb.Struct, structpb.Struct]
	authenticateDHC *connect.Client[structpb.Struct, structpb.Struct]
	authenticateSIS *connect.Client[structpb.Struct, structpb.Struct]
}

func NewClient(httpClient connect.HTTPClient, baseUrl string, opts ...connect.ClientOption) Client {
	return Client{
		authenticate:    connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseUrl+AuthenticateProcedure, opts...),
		authenticateDHC: connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseUrl+AuthenticateDHCProcedure, opts...),
		authenticateSIS: connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseUrl+AuthenticateSISProcedure, opts...),
	}
}

func newRequest(creds sejong.Credentials, raw bool) *connect.Request[structpb.Struct] {
	return connect.NewRequest(&structpb.Struct{
		Fields: map[string]*structpb.Value{
			"student_id": structpb.NewStringValue(creds.StudentId),
			"password":   structpb.NewStringValue(creds.Password),
			"raw":        structpb.NewBoolValue(raw),
		},
	})
}

// Authenticate returns the result as the json object the service sent.
func (c Client) Authenticate(ctx context.Context, creds sejong.Credentials, raw bool) (*structpb.Struct, error) {
	res, err := c.authenticate.CallUnary(ctx, newRequest(creds, raw))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

func (c Client) AuthenticateDHC(ctx context.Context, creds sejong.Credentials, raw bool) (*structpb.Struct, error) {
	res, err := c.authenticateDHC.CallUnary(ctx, newRequest(creds, raw))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

func (c Client) AuthenticateSIS(ctx context.Context, creds sejong.Credentials, raw bool) (*structpb.Struct, error) {
	res, err := c.authenticateSIS.CallUnary(ctx, newRequest(creds, raw))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}
