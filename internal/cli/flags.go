package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/temirov/structmd/internal/config"
)

const (
	booleanFlagTypeName              = "bool"
	booleanFlagTrueLiteral           = "true"
	booleanFlagAcceptedValuesListing = "true, false, yes, no, on, off, 1, 0"
	invalidBooleanFlagValueFormat    = "invalid boolean value %q for --%s; accepted values: %s"
	negativeValueFormat              = "invalid value %d for --%s; must not be negative"

	outputFlagName      = "output"
	outputFlagShorthand = "o"
	excludeFlagName     = "exclude"
	excludeFlagShort    = "e"
	ignoreFileFlagName  = "ignore-file"
	styleFlagName       = "style"
	indentFlagName      = "indent"
	maxDepthFlagName    = "max-depth"
	maxEntriesFlagName  = "max-entries"
	workersFlagName     = "workers"
	copyFlagName        = "copy"
	tokensFlagName      = "tokens"
	modelFlagName       = "model"
	configFlagName      = "config"
	verboseFlagName     = "verbose"

	outputFlagDescription     = "destination file for the rendered tree, or - for standard output"
	excludeFlagDescription    = "additional exclusion pattern (repeatable)"
	ignoreFileFlagDescription = "ignore file to read patterns from, relative to the root (repeatable)"
	styleFlagDescription      = "connector style: uniform or classic"
	indentFlagDescription     = "indentation unit for one tree level"
	maxDepthFlagDescription   = "do not descend below this depth (0 means unlimited)"
	maxEntriesFlagDescription = "fail when the tree would exceed this many entries (0 means unlimited)"
	workersFlagDescription    = "number of concurrent directory listings"
	copyFlagDescription       = "also copy the rendered tree to the clipboard"
	tokensFlagDescription     = "log the token count of the rendered tree"
	modelFlagDescription      = "tokenizer model used by --tokens"
	configFlagDescription     = "configuration file to use instead of the local one"
	verboseFlagDescription    = "log debug diagnostics"
)

var booleanFlagLiterals = map[string]bool{
	"true":  true,
	"t":     true,
	"1":     true,
	"yes":   true,
	"y":     true,
	"on":    true,
	"false": false,
	"f":     false,
	"0":     false,
	"no":    false,
	"n":     false,
	"off":   false,
}

// booleanFlagValue accepts the literals in booleanFlagLiterals and a bare flag as true.
type booleanFlagValue struct {
	target  *bool
	flagKey string
}

func (value *booleanFlagValue) Set(input string) error {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		normalized = booleanFlagTrueLiteral
	}
	parsed, ok := booleanFlagLiterals[normalized]
	if !ok {
		return fmt.Errorf(invalidBooleanFlagValueFormat, input, value.flagKey, booleanFlagAcceptedValuesListing)
	}
	*value.target = parsed
	return nil
}

func (value *booleanFlagValue) String() string {
	if value == nil || value.target == nil {
		return "false"
	}
	return strconv.FormatBool(*value.target)
}

func (value *booleanFlagValue) Type() string {
	return booleanFlagTypeName
}

func registerBooleanFlag(flagSet *pflag.FlagSet, target *bool, name string, usage string) {
	*target = false
	flagSet.Var(&booleanFlagValue{target: target, flagKey: name}, name, usage)
	if lookup := flagSet.Lookup(name); lookup != nil {
		lookup.DefValue = "false"
		lookup.NoOptDefVal = booleanFlagTrueLiteral
	}
}

// normalizeBooleanFlagArguments rewrites "--flag value" into "--flag=value" for boolean
// flags whose next argument is a boolean literal, so that "--copy no" is not read as a
// positional root argument.
func normalizeBooleanFlagArguments(command *cobra.Command, arguments []string) []string {
	booleanFlags := map[string]struct{}{}
	collectBooleanFlagNames(command, booleanFlags)
	if len(booleanFlags) == 0 {
		return arguments
	}
	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		currentArgument := arguments[index]
		if currentArgument == "--" {
			normalized = append(normalized, arguments[index:]...)
			break
		}
		if strings.HasPrefix(currentArgument, "--") && !strings.Contains(currentArgument, "=") && index+1 < len(arguments) {
			flagName := strings.TrimPrefix(currentArgument, "--")
			nextArgument := arguments[index+1]
			if _, isBoolean := booleanFlags[flagName]; isBoolean {
				if _, isLiteral := booleanFlagLiterals[strings.ToLower(strings.TrimSpace(nextArgument))]; isLiteral {
					normalized = append(normalized, currentArgument+"="+nextArgument)
					index++
					continue
				}
			}
		}
		normalized = append(normalized, currentArgument)
	}
	return normalized
}

func collectBooleanFlagNames(command *cobra.Command, target map[string]struct{}) {
	visit := func(flagSet *pflag.FlagSet) {
		flagSet.VisitAll(func(flag *pflag.Flag) {
			if flag.Value != nil && flag.Value.Type() == booleanFlagTypeName {
				target[flag.Name] = struct{}{}
			}
		})
	}
	visit(command.PersistentFlags())
	visit(command.Flags())
	for _, child := range command.Commands() {
		collectBooleanFlagNames(child, target)
	}
}

// generateFlags holds the raw values of the generation flags of one command.
type generateFlags struct {
	output      string
	exclude     []string
	ignoreFiles []string
	style       string
	indent      string
	maxDepth    int
	maxEntries  int
	workers     int
	copy        bool
	tokens      bool
	model       string
}

func bindGenerateFlags(command *cobra.Command, flags *generateFlags) {
	flagSet := command.Flags()
	flagSet.StringVarP(&flags.output, outputFlagName, outputFlagShorthand, "", outputFlagDescription)
	flagSet.StringArrayVarP(&flags.exclude, excludeFlagName, excludeFlagShort, nil, excludeFlagDescription)
	flagSet.StringArrayVar(&flags.ignoreFiles, ignoreFileFlagName, nil, ignoreFileFlagDescription)
	flagSet.StringVar(&flags.style, styleFlagName, "", styleFlagDescription)
	flagSet.StringVar(&flags.indent, indentFlagName, "", indentFlagDescription)
	flagSet.IntVar(&flags.maxDepth, maxDepthFlagName, 0, maxDepthFlagDescription)
	flagSet.IntVar(&flags.maxEntries, maxEntriesFlagName, 0, maxEntriesFlagDescription)
	flagSet.IntVar(&flags.workers, workersFlagName, 1, workersFlagDescription)
	registerBooleanFlag(flagSet, &flags.copy, copyFlagName, copyFlagDescription)
	registerBooleanFlag(flagSet, &flags.tokens, tokensFlagName, tokensFlagDescription)
	flagSet.StringVar(&flags.model, modelFlagName, "", modelFlagDescription)
}

// generateSettings are the effective generation options after configuration and flags.
type generateSettings struct {
	output         string
	ignoreFiles    []string
	exclude        []string
	connectorStyle string
	indent         string
	maxDepth       int
	maxEntries     int
	workers        int
	copy           bool
	tokens         bool
	model          string
}

// resolveGenerateSettings starts from configuration and applies every flag the user set.
// Negative limits are rejected whether they come from configuration or flags.
func resolveGenerateSettings(configuration config.GenerateConfiguration, flags generateFlags, flagSet *pflag.FlagSet) (generateSettings, error) {
	settings := generateSettings{
		output:         configuration.Output,
		ignoreFiles:    append([]string{}, configuration.IgnoreFiles...),
		exclude:        append([]string{}, configuration.Exclude...),
		connectorStyle: configuration.ConnectorStyle,
		indent:         derefString(configuration.Indent),
		maxDepth:       derefInt(configuration.MaxDepth),
		maxEntries:     derefInt(configuration.MaxEntries),
		workers:        derefInt(configuration.Workers),
		copy:           derefBool(configuration.Copy),
		tokens:         derefBool(configuration.Tokens),
		model:          configuration.Model,
	}
	if flagSet.Changed(outputFlagName) {
		settings.output = flags.output
	}
	if flagSet.Changed(ignoreFileFlagName) {
		settings.ignoreFiles = append([]string{}, flags.ignoreFiles...)
	}
	if flagSet.Changed(excludeFlagName) {
		settings.exclude = append(settings.exclude, flags.exclude...)
	}
	if flagSet.Changed(styleFlagName) {
		settings.connectorStyle = flags.style
	}
	if flagSet.Changed(indentFlagName) {
		settings.indent = flags.indent
	}
	if flagSet.Changed(maxDepthFlagName) {
		settings.maxDepth = flags.maxDepth
	}
	if flagSet.Changed(maxEntriesFlagName) {
		settings.maxEntries = flags.maxEntries
	}
	if flagSet.Changed(workersFlagName) {
		settings.workers = flags.workers
	}
	if flagSet.Changed(copyFlagName) {
		settings.copy = flags.copy
	}
	if flagSet.Changed(tokensFlagName) {
		settings.tokens = flags.tokens
	}
	if flagSet.Changed(modelFlagName) {
		settings.model = flags.model
	}

	limits := []struct {
		flagName string
		value    int
	}{
		{flagName: maxDepthFlagName, value: settings.maxDepth},
		{flagName: maxEntriesFlagName, value: settings.maxEntries},
		{flagName: workersFlagName, value: settings.workers},
	}
	for _, limit := range limits {
		if limit.value < 0 {
			return generateSettings{}, fmt.Errorf(negativeValueFormat, limit.value, limit.flagName)
		}
	}
	return settings, nil
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func derefInt(value *int) int {
	if value == nil {
		return 0
	}
	return *value
}

func derefBool(value *bool) bool {
	return value != nil && *value
}
