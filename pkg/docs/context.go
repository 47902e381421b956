package docs

import (
	"github.com/NectoT/gdscript-to-md-docs/pkg/gdscript"
)

// classContext converts parsed class data into the template context. Optional
// fields map to nil rather than the empty string, so templates can tell an
// absent description from a blank one with 'is not none'.
func classContext(info *gdscript.ClassInfo) map[string]interface{} {
	return map[string]interface{}{
		"file_path":   info.FilePath,
		"name":        info.Name,
		"extends":     info.Extends,
		"summary":     optional(info.Summary),
		"description": optional(info.Description),
		"signals":     signalContexts(info.Signals),
		"enums":       enumContexts(info.Enums),
		"properties":  propertyContexts(info.Properties),
		"methods":     methodContexts(info.Methods),
	}
}

func optional(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func argContexts(args []gdscript.ArgInfo) []interface{} {
	out := make([]interface{}, len(args))
	for i, arg := range args {
		out[i] = map[string]interface{}{
			"name":    arg.Name,
			"type":    optional(arg.Type),
			"default": optional(arg.Default),
		}
	}
	return out
}

func signalContexts(signals []gdscript.SignalInfo) []interface{} {
	out := make([]interface{}, len(signals))
	for i, signal := range signals {
		out[i] = map[string]interface{}{
			"name":        signal.Name,
			"description": optional(signal.Description),
			"args":        argContexts(signal.Args),
		}
	}
	return out
}

func enumContexts(enums []gdscript.EnumInfo) []interface{} {
	out := make([]interface{}, len(enums))
	for i, enum := range enums {
		vals := make(map[string]interface{}, len(enum.Vals))
		for name, desc := range enum.Vals {
			vals[name] = optional(desc)
		}
		out[i] = map[string]interface{}{
			"name":        enum.Name,
			"description": optional(enum.Description),
			"vals":        vals,
		}
	}
	return out
}

func propertyContexts(properties []gdscript.PropertyInfo) []interface{} {
	out := make([]interface{}, len(properties))
	for i, property := range properties {
		out[i] = map[string]interface{}{
			"name":        property.Name,
			"type":        optional(property.Type),
			"description": optional(property.Description),
			"default":     optional(property.Default),
			"has_setter":  property.HasSetter,
			"has_getter":  property.HasGetter,
		}
	}
	return out
}

func methodContexts(methods []gdscript.MethodInfo) []interface{} {
	out := make([]interface{}, len(methods))
	for i, method := range methods {
		out[i] = map[string]interface{}{
			"name":        method.Name,
			"description": optional(method.Description),
			"args":        argContexts(method.Args),
			"type":        optional(method.ReturnType),
		}
	}
	return out
}
