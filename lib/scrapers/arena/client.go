package arena

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"arena-crawler/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/arena")

const listProfilesPath = "/api/users/profiles"
const detailProfilePath = "/api/v2/users/profile"

type Client struct {
	BaseUrl *url.URL
	ApiUrl  *url.URL
	Http    *resty.Client
}

type ClientOptions struct {
	BaseUrl     string
	ApiUrl      string
	Credentials CredentialSet
	Timeout     time.Duration
}

func NewClient(opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}
	apiUrl, err := url.Parse(opts.ApiUrl)
	if err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 30
	}

	client := resty.New()
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(
		baseUrl.Hostname(),
		apiUrl.Hostname(),
	))
	client.SetTimeout(timeout)
	client.SetCookies(opts.Credentials.Cookies)

	telemetry.InstrumentResty(client, "scrapers/arena/http")

	return &Client{
		BaseUrl: baseUrl,
		ApiUrl:  apiUrl,
		Http:    client,
	}, nil
}

// VerifyAuth loads the application landing page and checks whether the
// session cookies still hold. A signed-out session gets bounced to the
// signup/login page.
func (c *Client) VerifyAuth(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:VerifyAuth")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(c.BaseUrl.String())
	cerr := classifyResponse(res, err)
	if cerr != nil {
		span.RecordError(cerr)
		span.SetStatus(codes.Error, "failed to load landing page")
		return cerr
	}

	finalUrl := res.RawResponse.Request.URL.String()
	if strings.Contains(strings.ToLower(finalUrl), "signup") ||
		strings.Contains(strings.ToLower(finalUrl), "login") {
		span.SetStatus(codes.Error, "redirected to signup")
		return &AuthError{Reason: "redirected to signup/login, cookies are invalid or expired"}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return &ParseError{Err: err}
	}
	if len(doc.Find(`form[action*="login"], a[data-signed-out]`).Nodes) > 0 {
		span.SetStatus(codes.Error, "signed-out markers present")
		return &AuthError{Reason: "landing page shows the signed-out state"}
	}

	return nil
}

// fetchListPage requests one page of the list endpoint. queryStart pins
// the remote's sort/filter window, it must stay constant for a whole run.
func (c *Client) fetchListPage(ctx context.Context, queryStart int64, limit, offset int) (*ListPage, error) {
	ctx, span := tracer.Start(ctx, "client:fetchListPage")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"queryStart": strconv.FormatInt(queryStart, 10),
			"limit":      strconv.Itoa(limit),
			"offset":     strconv.Itoa(offset),
		}).
		Get(c.ApiUrl.JoinPath(listProfilesPath).String())
	cerr := classifyResponse(res, err)
	if cerr != nil {
		span.RecordError(cerr)
		span.SetStatus(codes.Error, "list page fetch failed")
		return nil, cerr
	}

	var page ListPage
	err = json.Unmarshal(res.Body(), &page)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list page did not decode")
		return nil, &ParseError{Err: err}
	}
	return &page, nil
}

// fetchDetail requests the extended profile of a single user.
func (c *Client) fetchDetail(ctx context.Context, userId int64) (*DetailProfile, error) {
	ctx, span := tracer.Start(ctx, "client:fetchDetail")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParam("id", strconv.FormatInt(userId, 10)).
		Get(c.ApiUrl.JoinPath(detailProfilePath).String())
	cerr := classifyResponse(res, err)
	if cerr != nil {
		span.RecordError(cerr)
		span.SetStatus(codes.Error, "detail fetch failed")
		return nil, cerr
	}

	var detail DetailProfile
	err = json.Unmarshal(res.Body(), &detail)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "detail did not decode")
		return nil, &ParseError{Err: err}
	}
	return &detail, nil
}
