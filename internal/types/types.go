package types

import "time"

// EvidenceType classifies the layer that produced an evidence item
type EvidenceType string

const (
	// EvidenceReputation is produced by feed membership or third-party verdicts
	EvidenceReputation EvidenceType = "reputation"
	// EvidenceStructural is produced by URL shape heuristics
	EvidenceStructural EvidenceType = "structural"
	// EvidenceBrand is produced by brand mimicry checks
	EvidenceBrand EvidenceType = "brand"
)

// EvidenceItem explains a single score change
type EvidenceItem struct {
	Type        EvidenceType `json:"type" example:"structural"`
	Label       string       `json:"label" example:"IP-based host"`
	Description string       `json:"description" example:"URL uses an IP address instead of a domain name."`
}

// Verdict is the per-URL classification band
type Verdict string

const (
	VerdictSafe       Verdict = "Safe"
	VerdictSuspicious Verdict = "Suspicious"
	VerdictMalicious  Verdict = "Malicious"
)

// URLFinding is the engine output for one distinct URL
type URLFinding struct {
	URL         string         `json:"url"`
	Score       float64        `json:"score"`
	Verdict     Verdict        `json:"verdict"`
	Evidence    []EvidenceItem `json:"evidence"`
	VTMalicious int            `json:"vt_malicious"`
	VTTotal     int            `json:"vt_total"`
}

// ConsensusMode records which fusion or override rule set the unified score
type ConsensusMode string

const (
	ConsensusWeighted         ConsensusMode = "weighted_consensus"
	ConsensusDisagreement     ConsensusMode = "weighted_disagreement"
	ConsensusVTOverride       ConsensusMode = "vt_override"
	ConsensusSSLBrandOverride ConsensusMode = "ssl_brand_override"
)

// RiskVerdict is the message-level verdict
type RiskVerdict string

const (
	RiskHigh   RiskVerdict = "High Risk"
	RiskMedium RiskVerdict = "Medium Risk"
	RiskLow    RiskVerdict = "Low Risk"
)

// Confidence qualifies a RiskVerdict
type Confidence string

const (
	ConfidenceVeryHigh Confidence = "Very High Confidence"
	ConfidenceHigh     Confidence = "High Confidence"
	ConfidenceModerate Confidence = "Moderate Confidence"
	ConfidenceLow      Confidence = "Low Confidence"
)

// TextualBrandCue is reported as the detected brand when only the message text names a brand
const TextualBrandCue = "Textual brand cue"

// PsychologicalIndex holds per-category manipulation pressure, each in [0,100]
type PsychologicalIndex struct {
	Urgency   int `json:"urgency"`
	Fear      int `json:"fear"`
	Authority int `json:"authority"`
	Scarcity  int `json:"scarcity"`
}

// SSLStatus summarizes the certificate of the top URL host
type SSLStatus struct {
	Issuer     string  `json:"issuer"`
	ExpiryDate *string `json:"expiry_date"`
	IsValid    bool    `json:"is_valid"`
}

// LocationData summarizes where the top URL host is served from
type LocationData struct {
	Country   string  `json:"country"`
	ISP       string  `json:"isp"`
	IPAddress *string `json:"ip_address"`
	Hosting   string  `json:"hosting,omitempty"`
}

// DNSRecords holds resolved A and MX records
type DNSRecords struct {
	A  []string `json:"a"`
	MX []string `json:"mx"`
}

// WhoisDetails holds registration metadata
type WhoisDetails struct {
	Registrar      string  `json:"registrar,omitempty"`
	CreationDate   *string `json:"creation_date,omitempty"`
	ExpirationDate string  `json:"expiration_date,omitempty"`
}

// AdvancedTechnicalDetails carries the raw enrichment of the top URL
type AdvancedTechnicalDetails struct {
	PageTitle     *string      `json:"page_title"`
	DomainAgeDays *int         `json:"domain_age_days"`
	RedirectChain []string     `json:"redirect_chain"`
	RedirectHops  int          `json:"redirect_hops"`
	DNSRecords    DNSRecords   `json:"dns_records"`
	Whois         WhoisDetails `json:"whois"`
	FinalURL      string       `json:"final_url"`
}

// IntelligenceProfile is the explainable enrichment section of a scan
type IntelligenceProfile struct {
	SSLStatus                SSLStatus                `json:"ssl_status"`
	LocationData             LocationData             `json:"location_data"`
	ThreatArray              []string                 `json:"threat_array"`
	AdvancedTechnicalDetails AdvancedTechnicalDetails `json:"advanced_technical_details"`
}

// UnifiedScanResult is the consensus scanner output for one message
type UnifiedScanResult struct {
	UnifiedScore        float64             `json:"unified_score"`
	LocalScore          float64             `json:"local_score"`
	ExternalScore       float64             `json:"external_score"`
	SSLAgeScore         float64             `json:"ssl_age_score"`
	ConsensusMode       ConsensusMode       `json:"consensus_mode"`
	Verdict             RiskVerdict         `json:"verdict"`
	ConfidenceLevel     Confidence          `json:"confidence_level"`
	DetectedBrand       *string             `json:"detected_brand"`
	BrandMatches        []string            `json:"brand_matches"`
	LogicFlags          []string            `json:"logic_flags"`
	FlaggedPhrases      []string            `json:"flagged_phrases"`
	PsychologicalIndex  PsychologicalIndex  `json:"psychological_index"`
	VTMaliciousEngines  int                 `json:"vt_malicious_engines"`
	VTTotalEngines      int                 `json:"vt_total_engines"`
	HighestRiskURL      *string             `json:"highest_risk_url"`
	URLFindings         []URLFinding        `json:"url_findings"`
	IntelligenceProfile IntelligenceProfile `json:"intelligence_profile"`
	ScannedAt           time.Time           `json:"scanned_at"`
}

// MailSeverityRollup reduces many URL findings to one message verdict
type MailSeverityRollup struct {
	MailSeverityScore float64 `json:"mail_severity_score"`
	MostDangerousLink *string `json:"most_dangerous_link"`
	MaliciousLinks    int     `json:"malicious_links"`
	SuspiciousLinks   int     `json:"suspicious_links"`
	SafeLinks         int     `json:"safe_links"`
	SummaryReason     string  `json:"summary_reason"`
}
