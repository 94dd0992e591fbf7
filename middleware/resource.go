package middleware

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// unknownService is the default service name when detection fails
const unknownService = "unknown-service"

const serviceAccountNamespaceFile = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"

// serviceIdentity is how traces and profiles name this process
type serviceIdentity struct {
	Name      string
	Namespace string
}

// detectServiceIdentity resolves the service name from OTEL_SERVICE_NAME, then
// the configured name, then the Kubernetes pod name. The namespace comes from
// OTEL_RESOURCE_ATTRIBUTES, the mounted service account, or POD_NAMESPACE.
func detectServiceIdentity(configured string) serviceIdentity {
	id := serviceIdentity{Name: os.Getenv("OTEL_SERVICE_NAME")}

	if id.Name == "" && configured != "" && configured != "unknown" {
		id.Name = configured
	}
	if id.Name == "" {
		podName := os.Getenv("POD_NAME")
		if podName == "" {
			podName, _ = os.Hostname()
		}
		id.Name = serviceFromPodName(podName)
	}
	if id.Name == "" {
		id.Name = unknownService
	}

	id.Namespace = resourceAttribute(os.Getenv("OTEL_RESOURCE_ATTRIBUTES"), string(semconv.ServiceNamespaceKey))
	if id.Namespace == "" {
		if data, err := os.ReadFile(serviceAccountNamespaceFile); err == nil {
			id.Namespace = strings.TrimSpace(string(data))
		}
	}
	if id.Namespace == "" {
		id.Namespace = os.Getenv("POD_NAMESPACE")
	}
	if id.Namespace == "" {
		id.Namespace = "default"
	}

	return id
}

// serviceFromPodName strips the replicaset and pod hashes from a Deployment
// pod name: "connectspark-75c98b4b9c-kdv2n" -> "connectspark".
func serviceFromPodName(podName string) string {
	if podName == "" {
		return ""
	}
	parts := strings.Split(podName, "-")
	if len(parts) >= 3 {
		return strings.Join(parts[:len(parts)-2], "-")
	}
	return parts[0]
}

// resourceAttribute reads key from an OTEL_RESOURCE_ATTRIBUTES value ("k1=v1,k2=v2")
func resourceAttribute(attrs, key string) string {
	for attr := range strings.SplitSeq(attrs, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(attr), "=")
		if ok && k == key {
			return v
		}
	}
	return ""
}

// newResource builds the OpenTelemetry resource for id. On partial detection
// failure it returns a minimal resource together with the error.
func newResource(ctx context.Context, id serviceIdentity, version, env string) (*resource.Resource, error) {
	res, err := resource.New(
		ctx,
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithOS(),
		resource.WithContainer(),
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(id.Name),
			semconv.ServiceNamespaceKey.String(id.Namespace),
			semconv.ServiceVersionKey.String(version),
			semconv.DeploymentEnvironmentKey.String(env),
		),
	)
	if err != nil {
		return resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(id.Name),
			semconv.ServiceNamespaceKey.String(id.Namespace),
		), fmt.Errorf("resource detection partial failure (using fallback): %w", err)
	}

	return res, nil
}
