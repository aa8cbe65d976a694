package ocsf

import "fmt"

// Class identifies one OCSF event class by its numeric class_uid.
type Class uint32

// Category returns the OCSF category number this class belongs to.
func (c Class) Category() uint32 {
	return (uint32(c) % 10000) / 1000
}

// classInfo names a class and the category it falls under.
type classInfo struct {
	category string
	class    string
}

// categoryNames maps category number to its OCSF directory/display name.
// This mirrors the allowlist real StrIEM deployments use to scope the
// management API's external-access controls.
var categoryNames = map[uint32]string{
	1: "system_activity",
	2: "findings",
	3: "iam",
	4: "network_activity",
	5: "discovery",
	6: "application_activity",
	7: "remediation",
	8: "unmanned_systems",
}

// classes is the hand-maintained class_uid table. It is deliberately a
// subset of the full ocsf-schema corpus — enough classes to exercise every
// category and give the columnar writer a real routing table — not a
// generated mirror of the upstream schema repository.
var classes = map[Class]classInfo{
	// System Activity (1xxx)
	1001: {"system_activity", "file_system_activity"},
	1002: {"system_activity", "kernel_extension_activity"},
	1003: {"system_activity", "kernel_activity"},
	1004: {"system_activity", "memory_activity"},
	1005: {"system_activity", "module_activity"},
	1006: {"system_activity", "scheduled_job_activity"},
	1007: {"system_activity", "process_activity"},
	1008: {"system_activity", "event_log_activity"},
	1009: {"system_activity", "script_activity"},

	// Findings (2xxx)
	2001: {"findings", "security_finding"},
	2002: {"findings", "vulnerability_finding"},
	2003: {"findings", "compliance_finding"},
	2004: {"findings", "detection_finding"},
	2005: {"findings", "incident_finding"},
	2006: {"findings", "data_security_finding"},

	// Identity & Access Management (3xxx)
	3001: {"iam", "account_change"},
	3002: {"iam", "authentication"},
	3003: {"iam", "authorize_session"},
	3004: {"iam", "entity_management"},
	3005: {"iam", "user_access_management"},
	3006: {"iam", "group_management"},

	// Network Activity (4xxx)
	4001: {"network_activity", "network_activity"},
	4002: {"network_activity", "http_activity"},
	4003: {"network_activity", "dns_activity"},
	4004: {"network_activity", "dhcp_activity"},
	4005: {"network_activity", "rdp_activity"},
	4006: {"network_activity", "smb_activity"},
	4007: {"network_activity", "ssh_activity"},
	4008: {"network_activity", "ftp_activity"},
	4009: {"network_activity", "email_activity"},
	4013: {"network_activity", "ntp_activity"},
	4014: {"network_activity", "tunnel_activity"},

	// Discovery (5xxx)
	5001: {"discovery", "device_inventory_info"},
	5002: {"discovery", "device_config_state"},
	5003: {"discovery", "user_inventory_info"},
	5004: {"discovery", "operating_system_patch_state"},
	5016: {"discovery", "process_query"},
	5017: {"discovery", "service_query"},
	5019: {"discovery", "user_query"},

	// Application Activity (6xxx)
	6001: {"application_activity", "web_resources_activity"},
	6002: {"application_activity", "application_lifecycle"},
	6003: {"application_activity", "api_activity"},
	6004: {"application_activity", "web_resource_access_activity"},
	6005: {"application_activity", "datastore_activity"},
	6006: {"application_activity", "file_hosting_activity"},
	6007: {"application_activity", "scan_activity"},

	// Remediation (7xxx)
	7001: {"remediation", "remediation_activity"},
	7002: {"remediation", "file_remediation_activity"},
	7003: {"remediation", "process_remediation_activity"},
	7004: {"remediation", "network_remediation_activity"},

	// Unmanned Systems (8xxx)
	8001: {"unmanned_systems", "unmanned_system_flight_activity"},
	8002: {"unmanned_systems", "unmanned_system_comms_activity"},
}

// ErrUnknownClass indicates a class_uid this build's table has no entry
// for; routing treats this as a dropped event, not a process-fatal error.
type ErrUnknownClass struct {
	ClassUID uint64
}

func (e ErrUnknownClass) Error() string {
	return fmt.Sprintf("ocsf: unknown class_uid %d", e.ClassUID)
}

// Lookup resolves a raw class_uid (as decoded from an event's data.class_uid
// field) to its Class, category name, and class name.
func Lookup(classUID uint64) (Class, string, string, error) {
	c := Class(classUID)
	info, ok := classes[c]
	if !ok {
		return 0, "", "", ErrUnknownClass{ClassUID: classUID}
	}
	return c, info.category, info.class, nil
}

// Classes returns every class this build knows how to route, for use by
// the schema loader when validating that every schema file on disk names a
// known class.
func Classes() []Class {
	out := make([]Class, 0, len(classes))
	for c := range classes {
		out = append(out, c)
	}
	return out
}

// CategoryName returns the directory/display name for a category number.
func CategoryName(category uint32) (string, bool) {
	name, ok := categoryNames[category]
	return name, ok
}
