package rules

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"
)

// Load reads a rule-set document from disk, validates it against the
// embedded JSON schema and the referential rules, and returns an immutable
// RuleSet. Any failure here is fatal to process startup.
func Load(path string, logger *logrus.Logger) (*RuleSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule set: %w", err)
	}

	return Parse(raw, logger)
}

// Parse validates and decodes a rule-set document.
func Parse(raw []byte, logger *logrus.Logger) (*RuleSet, error) {
	schemaLoader := gojsonschema.NewStringLoader(ruleSetSchema)
	docLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return nil, fmt.Errorf("rule set schema validation failed: %w", err)
	}
	if !result.Valid() {
		for _, desc := range result.Errors() {
			logger.WithFields(logrus.Fields{
				"field":  desc.Field(),
				"detail": desc.Description(),
			}).Error("Rule set schema violation")
		}
		return nil, fmt.Errorf("rule set document violates schema (%d errors)", len(result.Errors()))
	}

	rs := &RuleSet{}
	if err := json.Unmarshal(raw, rs); err != nil {
		return nil, fmt.Errorf("failed to decode rule set: %w", err)
	}

	if err := rs.Validate(); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"version":   rs.Version,
		"questions": len(rs.Questions),
		"drivers":   len(rs.Drivers),
		"scenarios": len(rs.Scenarios),
		"tones":     len(rs.Tones),
	}).Info("Loaded rule set")

	return rs, nil
}

// ruleSetSchema is the structural contract of an external rule-set document.
// Referential integrity (every referenced driver/tone/section/scenario id
// exists) is checked separately by Validate.
const ruleSetSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "questions", "tag_table", "drivers", "scenarios",
               "weights", "thresholds", "safety_triggers", "safety_scenario_id",
               "fallback_scenario_id", "tones", "default_tone",
               "autonomy_tone", "sections", "semantic"],
  "properties": {
    "version": {"type": "string", "minLength": 1},
    "questions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "type"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "type": {"enum": ["choice", "multi_choice", "numeric_range", "text"]},
          "required": {"type": "boolean"},
          "allowed_values": {"type": "array", "items": {"type": "string"}},
          "buckets": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["min", "max", "tag"],
              "properties": {
                "min": {"type": "integer"},
                "max": {"type": "integer"},
                "tag": {"type": "string", "minLength": 1}
              }
            }
          },
          "conditional": {
            "type": "object",
            "required": ["parent_id", "parent_values"],
            "properties": {
              "parent_id": {"type": "string"},
              "parent_values": {"type": "array", "items": {"type": "string"}, "minItems": 1}
            }
          }
        }
      }
    },
    "tag_table": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["question_id", "answer", "tags"],
        "properties": {
          "question_id": {"type": "string"},
          "answer": {"type": "string"},
          "tags": {"type": "array", "items": {"type": "string"}, "minItems": 1}
        }
      }
    },
    "drivers": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "layer", "fallback", "rules"],
        "properties": {
          "id": {"type": "string"},
          "layer": {"enum": ["L1", "L2", "L3"]},
          "fallback": {"type": "string", "minLength": 1},
          "rules": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["priority", "value"],
              "properties": {
                "priority": {"type": "integer", "minimum": 0},
                "value": {"type": "string", "minLength": 1},
                "tags": {"type": "array", "items": {"type": "string"}},
                "tags_all": {"type": "array", "items": {"type": "string"}},
                "tags_any": {"type": "array", "items": {"type": "string"}},
                "additive": {"type": "boolean"}
              }
            }
          }
        }
      }
    },
    "scenarios": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string"}
        }
      }
    },
    "weights": {
      "type": "object",
      "required": ["strong", "supporting"],
      "properties": {
        "strong": {"type": "number", "minimum": 0},
        "supporting": {"type": "number", "minimum": 0}
      }
    },
    "safety_triggers": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["driver", "values"],
        "properties": {
          "driver": {"type": "string"},
          "values": {"type": "array", "items": {"type": "string"}, "minItems": 1}
        }
      }
    },
    "thresholds": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["confidence", "min_score"],
        "properties": {
          "confidence": {"enum": ["HIGH", "MEDIUM", "LOW", "FALLBACK"]},
          "min_score": {"type": "number"}
        }
      }
    },
    "tones": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "name"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string"}
        }
      }
    },
    "sections": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["number", "title"],
        "properties": {
          "number": {"type": "integer", "minimum": 1},
          "title": {"type": "string"}
        }
      }
    },
    "semantic": {
      "type": "object",
      "required": ["global_banned", "critical_phrases", "categories"],
      "properties": {
        "global_banned": {"type": "array", "items": {"type": "string"}},
        "critical_phrases": {"type": "array", "items": {"type": "string"}},
        "categories": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["category", "explanation", "phrases"]
          }
        }
      }
    }
  }
}`
