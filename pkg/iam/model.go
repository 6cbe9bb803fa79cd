// Package iam holds the IAM policy messages shared by every service that
// supports access control, plus a client for the generic IAMPolicy methods.
package iam

import "github.com/fivetwenty-io/cloudrest/pkg/wkt"

// Policy is an access control policy: a list of bindings from roles to
// members. Etag supports read-modify-write cycles; send back the etag you
// read to avoid overwriting a concurrent change.
type Policy struct {
	Version      int32         `json:"version,omitempty"`
	Bindings     []Binding     `json:"bindings,omitempty"`
	AuditConfigs []AuditConfig `json:"auditConfigs,omitempty"`
	Etag         []byte        `json:"etag,omitempty"`
}

// Binding associates members with a role.
type Binding struct {
	Role      string   `json:"role,omitempty"`
	Members   []string `json:"members,omitempty"`
	Condition *Expr    `json:"condition,omitempty"`
}

// Expr is a CEL expression guarding a conditional binding.
type Expr struct {
	Expression  string `json:"expression,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
}

// AuditConfig configures audit logging for a service.
type AuditConfig struct {
	Service         string           `json:"service,omitempty"`
	AuditLogConfigs []AuditLogConfig `json:"auditLogConfigs,omitempty"`
}

// AuditLogConfig enables one log type, with optional exemptions.
type AuditLogConfig struct {
	LogType         string   `json:"logType,omitempty"`
	ExemptedMembers []string `json:"exemptedMembers,omitempty"`
}

// GetPolicyOptions selects the policy format to return.
type GetPolicyOptions struct {
	RequestedPolicyVersion int32 `json:"requestedPolicyVersion,omitempty"`
}

// SetIamPolicyRequest replaces the policy on Resource.
type SetIamPolicyRequest struct {
	Resource   string         `json:"resource,omitempty"`
	Policy     *Policy        `json:"policy,omitempty"`
	UpdateMask *wkt.FieldMask `json:"updateMask,omitempty"`
}

// GetIamPolicyRequest reads the policy on Resource.
type GetIamPolicyRequest struct {
	Resource string            `json:"resource,omitempty"`
	Options  *GetPolicyOptions `json:"options,omitempty"`
}

// TestIamPermissionsRequest asks which of Permissions the caller holds.
type TestIamPermissionsRequest struct {
	Resource    string   `json:"resource,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// TestIamPermissionsResponse lists the permissions the caller holds.
type TestIamPermissionsResponse struct {
	Permissions []string `json:"permissions,omitempty"`
}

// AddMember adds member to the binding for role, creating the binding if
// needed. It reports whether the policy changed.
func (p *Policy) AddMember(role, member string) bool {
	for i := range p.Bindings {
		binding := &p.Bindings[i]
		if binding.Role != role || binding.Condition != nil {
			continue
		}

		for _, existing := range binding.Members {
			if existing == member {
				return false
			}
		}

		binding.Members = append(binding.Members, member)

		return true
	}

	p.Bindings = append(p.Bindings, Binding{Role: role, Members: []string{member}})

	return true
}
