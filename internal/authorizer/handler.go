package authorizer

import (
	"context"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
)

const (
	policyVersion = "2012-10-17"
	invokeAction  = "execute-api:Invoke"
)

// Handler is the API Gateway token authorizer entry point.
type Handler struct {
	authorizer *Authorizer
	logger     *slog.Logger
}

func NewHandler(authorizer *Authorizer, logger *slog.Logger) *Handler {
	return &Handler{authorizer: authorizer, logger: logger.With("component", "authorizer")}
}

// Handle always returns a policy, never an error, so a bad token cannot surface as a gateway fault.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayCustomAuthorizerRequest) (events.APIGatewayCustomAuthorizerResponse, error) {
	decision := h.authorizer.Authorize(req.AuthorizationToken, req.MethodArn)
	if decision.Allowed() {
		h.logger.InfoContext(ctx, "Access allowed", "principal", decision.PrincipalID, "resource", req.MethodArn)
	} else {
		h.logger.WarnContext(ctx, "Access denied", "reason", decision.Reason, "resource", req.MethodArn)
	}
	return Policy(decision), nil
}

// Policy renders the decision as an IAM policy scoped to the evaluated resource.
func Policy(d Decision) events.APIGatewayCustomAuthorizerResponse {
	return events.APIGatewayCustomAuthorizerResponse{
		PrincipalID: d.PrincipalID,
		PolicyDocument: events.APIGatewayCustomAuthorizerPolicy{
			Version: policyVersion,
			Statement: []events.IAMPolicyStatement{{
				Action:   []string{invokeAction},
				Effect:   string(d.Effect),
				Resource: []string{d.Resource},
			}},
		},
	}
}
