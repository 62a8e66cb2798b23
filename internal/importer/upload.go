package importer

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/abgdnv/cloudshop/pkg/web"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	csvContentType = "text/csv"

	msgMissingName       = "Missing required query parameter: name"
	msgBucketNotSet      = "Bucket name is not configured"
	msgSigningFailed     = "Error generating signed URL"
	corsAllowMethods     = "GET,PUT,OPTIONS"
	corsAllowHeaders     = "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token"
	defaultURLExpiration = time.Hour
)

// Presigner is the part of s3.PresignClient the upload handler needs.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// UploadConfig describes where uploads land and how long a signed URL stays valid.
type UploadConfig struct {
	Bucket     string
	Prefix     string
	Expiration time.Duration
	Origins    []string
}

// UploadHandler issues signed PUT URLs so clients upload CSV files straight to the bucket.
type UploadHandler struct {
	presigner Presigner
	cfg       UploadConfig
	logger    *slog.Logger
}

func NewUploadHandler(presigner Presigner, cfg UploadConfig, logger *slog.Logger) *UploadHandler {
	if cfg.Expiration <= 0 {
		cfg.Expiration = defaultURLExpiration
	}
	return &UploadHandler{presigner: presigner, cfg: cfg, logger: logger.With("component", "upload")}
}

// Handle answers GET /import?name=<file>.csv with the bare signed URL and OPTIONS with the CORS preflight.
func (h *UploadHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	origin := header(req.Headers, "Origin")
	if req.HTTPMethod == http.MethodOptions {
		headers := h.corsHeaders(origin)
		headers[web.HeaderAllowMethods] = corsAllowMethods
		headers[web.HeaderAllowHeaders] = corsAllowHeaders
		return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Headers: headers}, nil
	}

	name := req.QueryStringParameters["name"]
	if name == "" || !strings.HasSuffix(strings.ToLower(name), ".csv") {
		h.logger.WarnContext(ctx, "Rejected upload request", "name", name)
		return h.jsonError(origin, http.StatusBadRequest, web.ErrorBody{Error: msgMissingName}), nil
	}
	if h.cfg.Bucket == "" {
		h.logger.ErrorContext(ctx, "Upload bucket missing", "error", ErrBucketNotConfigured)
		return h.jsonError(origin, http.StatusInternalServerError, web.ErrorBody{Error: msgBucketNotSet}), nil
	}

	key := h.cfg.Prefix + name
	signed, err := h.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(h.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(csvContentType),
	}, s3.WithPresignExpires(h.cfg.Expiration))
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to sign upload URL", "key", key, "error", err)
		return h.jsonError(origin, http.StatusInternalServerError, web.ErrorBody{Error: msgSigningFailed, Details: err.Error()}), nil
	}

	h.logger.InfoContext(ctx, "Issued upload URL", "key", key, "expires_in", h.cfg.Expiration.String())
	headers := h.corsHeaders(origin)
	headers["Content-Type"] = "text/plain"
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Headers: headers, Body: signed.URL}, nil
}

func (h *UploadHandler) corsHeaders(origin string) map[string]string {
	hdr := http.Header{}
	web.SetCORSHeaders(hdr, h.cfg.Origins, origin)
	headers := make(map[string]string, len(hdr)+2)
	for k := range hdr {
		headers[k] = hdr.Get(k)
	}
	return headers
}

func (h *UploadHandler) jsonError(origin string, status int, body web.ErrorBody) events.APIGatewayProxyResponse {
	headers := h.corsHeaders(origin)
	headers["Content-Type"] = "application/json"
	data, _ := json.Marshal(body)
	return events.APIGatewayProxyResponse{StatusCode: status, Headers: headers, Body: string(data)}
}

// header looks a header up case-insensitively; API Gateway does not normalise names.
func header(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
