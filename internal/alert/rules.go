package alert

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/dashwatch/internal/models"
)

type RuleManager struct {
	db *gorm.DB
}

func NewRuleManager(db *gorm.DB) *RuleManager {
	return &RuleManager{db: db}
}

func (rm *RuleManager) CreateRule(rule *models.AlertRule) error {
	if err := ValidateRule(rule); err != nil {
		return err
	}
	return rm.db.Create(rule).Error
}

func (rm *RuleManager) UpdateRule(rule *models.AlertRule) error {
	if err := ValidateRule(rule); err != nil {
		return err
	}
	return rm.db.Save(rule).Error
}

func (rm *RuleManager) DeleteRule(id uint) error {
	return affected(rm.db.Unscoped().Delete(&models.AlertRule{}, id))
}

func (rm *RuleManager) GetRule(id uint) (*models.AlertRule, error) {
	var rule models.AlertRule
	if err := rm.db.First(&rule, id).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (rm *RuleManager) ListRules(enabled *bool) ([]models.AlertRule, error) {
	var rules []models.AlertRule
	query := rm.db.Order("id")
	if enabled != nil {
		query = query.Where("is_enabled = ?", *enabled)
	}
	if err := query.Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// RulesForDashboard returns the enabled rules of a dashboard in creation order.
func (rm *RuleManager) RulesForDashboard(dashboard string) ([]models.AlertRule, error) {
	var rules []models.AlertRule
	if err := rm.db.Where("dashboard = ? AND is_enabled = ?", dashboard, true).
		Order("id").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (rm *RuleManager) EnableRule(id uint) error {
	return affected(rm.db.Model(&models.AlertRule{}).Where("id = ?", id).Update("is_enabled", true))
}

func (rm *RuleManager) DisableRule(id uint) error {
	return affected(rm.db.Model(&models.AlertRule{}).Where("id = ?", id).Update("is_enabled", false))
}

// affected reports gorm.ErrRecordNotFound when a write matched no rule.
func affected(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RecordTrigger bumps the trigger statistics of a rule after it produced alerts.
func (rm *RuleManager) RecordTrigger(id uint, alerts int, at time.Time) error {
	return rm.db.Model(&models.AlertRule{}).Where("id = ?", id).Updates(map[string]interface{}{
		"last_triggered": at,
		"trigger_count":  gorm.Expr("trigger_count + ?", alerts),
	}).Error
}

// DefaultRules are the threshold checks the Elyassi and MagicBot dashboards ship with.
func DefaultRules() []models.AlertRule {
	return []models.AlertRule{
		{
			Name:                "high_workload",
			Description:         "Warn when a team member holds more than 40 tasks",
			Dashboard:           "elyassi",
			Metric:              "tasks",
			Operator:            models.OperatorGT,
			Threshold:           40,
			TitleTemplate:       "High workload for {{.Name}}",
			DescriptionTemplate: "Consider task redistribution",
			IsEnabled:           true,
		},
		{
			Name:                "low_engagement",
			Description:         "Warn when a client's engagement rate drops below 6%",
			Dashboard:           "magicbot",
			Metric:              "engagement",
			Operator:            models.OperatorLT,
			Threshold:           6,
			TitleTemplate:       "Low engagement for {{.Name}}",
			DescriptionTemplate: "Current rate: {{.Value}}%",
			IsEnabled:           true,
		},
	}
}

// CreateDefaultRules seeds the default rules when the store is empty.
func (rm *RuleManager) CreateDefaultRules() error {
	var count int64
	if err := rm.db.Model(&models.AlertRule{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count rules: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, rule := range DefaultRules() {
		if err := rm.CreateRule(&rule); err != nil {
			return fmt.Errorf("failed to create default rule %s: %w", rule.Name, err)
		}
	}

	return nil
}

// ImportRules validates every rule first and then creates them in one transaction.
func (rm *RuleManager) ImportRules(rules []models.AlertRule) error {
	for i := range rules {
		if err := ValidateRule(&rules[i]); err != nil {
			return fmt.Errorf("invalid rule '%s': %w", rules[i].Name, err)
		}
	}

	return rm.db.Transaction(func(tx *gorm.DB) error {
		for _, rule := range rules {
			// Clear ID to ensure new records are created
			rule.ID = 0
			if err := tx.Create(&rule).Error; err != nil {
				return fmt.Errorf("failed to import rule '%s': %w", rule.Name, err)
			}
		}
		return nil
	})
}

func (rm *RuleManager) ImportRulesFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	rules, err := UnmarshalRules(filename, data)
	if err != nil {
		return err
	}

	return rm.ImportRules(rules)
}

func (rm *RuleManager) ExportRulesToFile(filename string) error {
	rules, err := rm.ListRules(nil)
	if err != nil {
		return fmt.Errorf("failed to fetch rules: %w", err)
	}

	data, err := MarshalRules(filename, rules)
	if err != nil {
		return err
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// MarshalRules encodes rules as YAML when filename ends in .yaml or .yml,
// and as indented JSON otherwise.
func MarshalRules(filename string, rules []models.AlertRule) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if isYAML(filename) {
		data, err = yaml.Marshal(rules)
	} else {
		data, err = json.MarshalIndent(rules, "", "  ")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rules: %w", err)
	}
	return data, nil
}

// UnmarshalRules is the inverse of MarshalRules.
func UnmarshalRules(filename string, data []byte) ([]models.AlertRule, error) {
	var (
		rules []models.AlertRule
		err   error
	)
	if isYAML(filename) {
		err = yaml.Unmarshal(data, &rules)
	} else {
		err = json.Unmarshal(data, &rules)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	return rules, nil
}

func isYAML(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// TestRule evaluates a rule definition against records without dispatching anything.
func (rm *RuleManager) TestRule(rule *models.AlertRule, records []models.Record) ([]models.Alert, error) {
	compiled, err := RuleFromConfig(rule)
	if err != nil {
		return nil, err
	}
	return Evaluate(records, compiled), nil
}
