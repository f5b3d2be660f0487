package config

// Descriptor key layout: name, arity marker and attribute names joined
// with DescriptorSep. The variadic marker stands in for the arity when
// the operator takes a runtime-length tensor list.
const (
	DescriptorSep  = "-"
	VariadicMarker = "*"
)

// Schema naming conventions
const (
	// MutatingSuffix marks in-place operator forms (e.g. "add_")
	MutatingSuffix = "_"

	// OutVariantSuffix marks out-parameter operator forms (e.g. "add_out")
	OutVariantSuffix = "_out"

	// MagicAffix wraps dunder-style operator names (e.g. "__and__")
	MagicAffix = "__"
)

// Contexts a declaration can belong to
const (
	NamespaceContext = "namespace"
	TensorReceiver   = "Tensor"
)

// Build artifact file names
const (
	ManifestFileName      = "dispatch_manifest.json"
	InternedNamesFileName = "interned_names.txt"
)
