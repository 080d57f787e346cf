package domain

// GatingConfig holds per-tenant feature gates. Extra keys from the stored
// record are carried in TenantConfig.Extra, not here.
type GatingConfig struct {
	UseProfileGreeting  bool `json:"useProfileGreeting"`
	DisableLegacyCFQ    bool `json:"disableLegacyCfq"`
	EnableKindHonesty   bool `json:"enableKindHonesty"`
	EnableHardQuestions bool `json:"enableHardQuestions"`
}

// AIConfig selects the model and sampling parameters for a tenant.
type AIConfig struct {
	Model       string  `json:"model,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"maxTokens,omitempty"`
}

// TemplateConfig controls template selection for rendered copy.
type TemplateConfig struct {
	Greeting          string `json:"greeting,omitempty"`
	Question          string `json:"question,omitempty"`
	Response          string `json:"response,omitempty"`
	FallbackToDefault bool   `json:"fallbackToDefault"`
}

// PrivacyConfig controls what a tenant allows to be logged and retained.
type PrivacyConfig struct {
	RedactPIIInLogs  bool `json:"redactPIIInLogs"`
	AllowDataSharing bool `json:"allowDataSharing"`
	RetentionDays    int  `json:"retentionDays,omitempty"`
}

// BrandConfig carries tenant branding used in prompt construction.
type BrandConfig struct {
	Name  string `json:"name,omitempty"`
	Voice string `json:"voice,omitempty"`
}

// TenantConfig is a tenant's configuration with field-level defaults applied.
// Extra preserves stored keys this layer does not model; they pass through
// the merge untouched.
type TenantConfig struct {
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name,omitempty"`
	Locale    string         `json:"locale,omitempty"`
	Timezone  string         `json:"timezone,omitempty"`
	Brand     *BrandConfig   `json:"brand,omitempty"`
	Gating    GatingConfig   `json:"gating"`
	AI        AIConfig       `json:"ai"`
	Templates TemplateConfig `json:"templates"`
	Privacy   PrivacyConfig  `json:"privacy"`
	Extra     map[string]any `json:"-"`
}

// ConfigSource records which layers contributed to a resolved config.
type ConfigSource struct {
	Global      bool `json:"global"`
	Stage       bool `json:"stage"`
	Tenant      bool `json:"tenant"`
	Environment bool `json:"environment"`
	Experiment  bool `json:"experiment"`
}

// ResolvedTenantConfig is a TenantConfig after all override layers are
// merged, with resolution provenance attached.
type ResolvedTenantConfig struct {
	TenantConfig
	ResolvedAt string       `json:"_resolved_at,omitempty"`
	Source     ConfigSource `json:"_source"`
}
