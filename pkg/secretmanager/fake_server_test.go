package secretmanager_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/fivetwenty-io/cloudrest/pkg/iam"
	"github.com/fivetwenty-io/cloudrest/pkg/location"
	"github.com/fivetwenty-io/cloudrest/pkg/secretmanager"
)

// fakeSecretManager keeps secrets and versions in memory and speaks just
// enough of the REST surface for the client tests.
type fakeSecretManager struct {
	mu       sync.Mutex
	secrets  map[string]*secretmanager.Secret
	versions map[string][]*secretmanager.SecretVersion
	payloads map[string]*secretmanager.SecretPayload
	policies map[string]*iam.Policy
	pageSize int
	requests []string
}

func newFakeSecretManager() *fakeSecretManager {
	return &fakeSecretManager{
		secrets:  map[string]*secretmanager.Secret{},
		versions: map[string][]*secretmanager.SecretVersion{},
		payloads: map[string]*secretmanager.SecretPayload{},
		policies: map[string]*iam.Policy{},
		pageSize: 2,
	}
}

func (f *fakeSecretManager) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.requests...)
}

func (f *fakeSecretManager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	if r.Header.Get("Authorization") != "Bearer test-token" {
		writeStatus(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing credentials")

		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/v1/")
	resource, verb, _ := strings.Cut(path, ":")

	switch {
	case verb == "getIamPolicy" || verb == "setIamPolicy" || verb == "testIamPermissions":
		f.iam(w, r, resource, verb)
	case r.Method == http.MethodGet && strings.HasSuffix(resource, "/locations"):
		writeJSON(w, &location.ListLocationsResponse{Locations: []location.Location{
			{Name: resource + "/us-east1", LocationID: "us-east1"},
		}})
	case r.Method == http.MethodPost && strings.HasSuffix(resource, "/secrets") && verb == "":
		f.create(w, r, strings.TrimSuffix(resource, "/secrets"))
	case r.Method == http.MethodGet && strings.HasSuffix(resource, "/secrets"):
		f.list(w, r, strings.TrimSuffix(resource, "/secrets"))
	case r.Method == http.MethodPost && verb == "addVersion":
		f.addVersion(w, r, resource)
	case r.Method == http.MethodGet && strings.HasSuffix(resource, "/versions"):
		f.listVersions(w, r, strings.TrimSuffix(resource, "/versions"))
	case r.Method == http.MethodGet && verb == "access":
		f.access(w, resource)
	case r.Method == http.MethodPost && (verb == "disable" || verb == "enable" || verb == "destroy"):
		f.transition(w, resource, verb)
	case r.Method == http.MethodGet && strings.Contains(resource, "/versions/"):
		f.getVersion(w, resource)
	case r.Method == http.MethodGet:
		f.get(w, resource)
	case r.Method == http.MethodPatch:
		f.update(w, r, resource)
	case r.Method == http.MethodDelete:
		f.delete(w, r, resource)
	default:
		writeStatus(w, http.StatusNotImplemented, "UNIMPLEMENTED", r.Method+" "+r.URL.Path)
	}
}

func (f *fakeSecretManager) create(w http.ResponseWriter, r *http.Request, parent string) {
	var secret secretmanager.Secret

	err := json.NewDecoder(r.Body).Decode(&secret)
	if err != nil {
		writeStatus(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())

		return
	}

	name := parent + "/secrets/" + r.URL.Query().Get("secretId")
	if _, exists := f.secrets[name]; exists {
		writeStatus(w, http.StatusConflict, "ALREADY_EXISTS", "Secret ["+name+"] already exists.")

		return
	}

	secret.Name = name
	secret.Etag = `"1"`
	f.secrets[name] = &secret

	writeJSON(w, &secret)
}

func (f *fakeSecretManager) get(w http.ResponseWriter, name string) {
	secret, ok := f.secrets[name]
	if !ok {
		writeStatus(w, http.StatusNotFound, "NOT_FOUND", "Secret ["+name+"] not found.")

		return
	}

	writeJSON(w, secret)
}

func (f *fakeSecretManager) update(w http.ResponseWriter, r *http.Request, name string) {
	secret, ok := f.secrets[name]
	if !ok {
		writeStatus(w, http.StatusNotFound, "NOT_FOUND", "Secret ["+name+"] not found.")

		return
	}

	var patch secretmanager.Secret

	_ = json.NewDecoder(r.Body).Decode(&patch)

	for _, field := range strings.Split(r.URL.Query().Get("updateMask"), ",") {
		switch field {
		case "labels":
			secret.Labels = patch.Labels
		case "annotations":
			secret.Annotations = patch.Annotations
		}
	}

	secret.Etag = `"2"`

	writeJSON(w, secret)
}

func (f *fakeSecretManager) delete(w http.ResponseWriter, r *http.Request, name string) {
	secret, ok := f.secrets[name]
	if !ok {
		writeStatus(w, http.StatusNotFound, "NOT_FOUND", "Secret ["+name+"] not found.")

		return
	}

	if etag := r.URL.Query().Get("etag"); etag != "" && etag != secret.Etag {
		writeStatus(w, http.StatusConflict, "ABORTED", "etag mismatch")

		return
	}

	delete(f.secrets, name)
	delete(f.versions, name)

	writeJSON(w, struct{}{})
}

func (f *fakeSecretManager) list(w http.ResponseWriter, r *http.Request, parent string) {
	var names []string

	for name := range f.secrets {
		if strings.HasPrefix(name, parent+"/secrets/") {
			names = append(names, name)
		}
	}

	sort.Strings(names)

	page, next := f.page(names, r.URL.Query().Get("pageToken"))

	resp := secretmanager.ListSecretsResponse{NextPageToken: next, TotalSize: int32(len(names))} //nolint:gosec // test data

	for _, name := range page {
		resp.Secrets = append(resp.Secrets, *f.secrets[name])
	}

	writeJSON(w, &resp)
}

func (f *fakeSecretManager) page(names []string, token string) ([]string, string) {
	start := 0
	if token != "" {
		start, _ = strconv.Atoi(token)
	}

	end := min(start+f.pageSize, len(names))
	if end >= len(names) {
		return names[start:], ""
	}

	return names[start:end], strconv.Itoa(end)
}

func (f *fakeSecretManager) addVersion(w http.ResponseWriter, r *http.Request, parent string) {
	if _, ok := f.secrets[parent]; !ok {
		writeStatus(w, http.StatusNotFound, "NOT_FOUND", "Secret ["+parent+"] not found.")

		return
	}

	var req secretmanager.AddSecretVersionRequest

	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.Payload != nil && req.Payload.Verify() != nil {
		writeStatus(w, http.StatusBadRequest, "INVALID_ARGUMENT", "checksum mismatch")

		return
	}

	version := &secretmanager.SecretVersion{
		Name:                           fmt.Sprintf("%s/versions/%d", parent, len(f.versions[parent])+1),
		State:                          secretmanager.StateEnabled,
		ClientSpecifiedPayloadChecksum: req.Payload != nil && req.Payload.DataCrc32c != nil,
	}

	f.versions[parent] = append(f.versions[parent], version)
	f.payloads[version.Name] = req.Payload

	writeJSON(w, version)
}

func (f *fakeSecretManager) findVersion(name string) *secretmanager.SecretVersion {
	parent, _, _ := strings.Cut(name, "/versions/")

	for _, version := range f.versions[parent] {
		if version.Name == name {
			return version
		}
	}

	return nil
}

func (f *fakeSecretManager) getVersion(w http.ResponseWriter, name string) {
	version := f.findVersion(name)
	if version == nil {
		writeStatus(w, http.StatusNotFound, "NOT_FOUND", "Secret Version ["+name+"] not found.")

		return
	}

	writeJSON(w, version)
}

func (f *fakeSecretManager) listVersions(w http.ResponseWriter, r *http.Request, parent string) {
	var names []string

	for _, version := range f.versions[parent] {
		names = append(names, version.Name)
	}

	page, next := f.page(names, r.URL.Query().Get("pageToken"))
	resp := secretmanager.ListSecretVersionsResponse{NextPageToken: next}

	for _, name := range page {
		resp.Versions = append(resp.Versions, *f.findVersion(name))
	}

	writeJSON(w, &resp)
}

func (f *fakeSecretManager) access(w http.ResponseWriter, name string) {
	version := f.findVersion(name)
	if version == nil {
		writeStatus(w, http.StatusNotFound, "NOT_FOUND", "Secret Version ["+name+"] not found.")

		return
	}

	if version.State != secretmanager.StateEnabled {
		writeStatus(w, http.StatusPreconditionFailed, "FAILED_PRECONDITION", "Secret Version ["+name+"] is in "+string(version.State)+" state.")

		return
	}

	writeJSON(w, &secretmanager.AccessSecretVersionResponse{Name: name, Payload: f.payloads[name]})
}

func (f *fakeSecretManager) transition(w http.ResponseWriter, name, verb string) {
	version := f.findVersion(name)
	if version == nil {
		writeStatus(w, http.StatusNotFound, "NOT_FOUND", "Secret Version ["+name+"] not found.")

		return
	}

	switch verb {
	case "disable":
		version.State = secretmanager.StateDisabled
	case "enable":
		version.State = secretmanager.StateEnabled
	case "destroy":
		version.State = secretmanager.StateDestroyed
		delete(f.payloads, name)
	}

	writeJSON(w, version)
}

func (f *fakeSecretManager) iam(w http.ResponseWriter, r *http.Request, resource, verb string) {
	if _, ok := f.secrets[resource]; !ok {
		writeStatus(w, http.StatusNotFound, "NOT_FOUND", "Secret ["+resource+"] not found.")

		return
	}

	switch verb {
	case "getIamPolicy":
		if r.Method != http.MethodGet {
			writeStatus(w, http.StatusMethodNotAllowed, "INVALID_ARGUMENT", "getIamPolicy is a GET")

			return
		}

		policy := f.policies[resource]
		if policy == nil {
			policy = &iam.Policy{Etag: []byte("ACAB")}
		}

		if version := r.URL.Query().Get("options.requestedPolicyVersion"); version != "" {
			parsed, _ := strconv.Atoi(version)
			policy.Version = int32(parsed) //nolint:gosec // test data
		}

		writeJSON(w, policy)
	case "setIamPolicy":
		var req iam.SetIamPolicyRequest

		_ = json.NewDecoder(r.Body).Decode(&req)
		f.policies[resource] = req.Policy

		writeJSON(w, req.Policy)
	case "testIamPermissions":
		var req iam.TestIamPermissionsRequest

		_ = json.NewDecoder(r.Body).Decode(&req)

		var granted []string

		for _, permission := range req.Permissions {
			if strings.HasPrefix(permission, "secretmanager.versions.") {
				granted = append(granted, permission)
			}
		}

		writeJSON(w, &iam.TestIamPermissionsResponse{Permissions: granted})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeStatus(w http.ResponseWriter, code int, status, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = fmt.Fprintf(w, `{"error":{"code":%d,"message":%q,"status":%q}}`, code, message, status)
}
