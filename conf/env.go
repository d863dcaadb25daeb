package conf

// EnvironmentEnum deployment environment
type EnvironmentEnum string

const (
	LocalEnvironmentEnum   EnvironmentEnum = "loc"
	TestEnvironmentEnum    EnvironmentEnum = "test"
	MainnetEnvironmentEnum EnvironmentEnum = "mainnet"
	ExampleEnvironmentEnum EnvironmentEnum = "example"
)

// SystemEnvironmentEnum environment selected by the -env flag
var SystemEnvironmentEnum = LocalEnvironmentEnum

// ParseEnvironment map a -env flag value, unknown values fall back to loc
func ParseEnvironment(env string) EnvironmentEnum {
	switch e := EnvironmentEnum(env); e {
	case LocalEnvironmentEnum, TestEnvironmentEnum, MainnetEnvironmentEnum, ExampleEnvironmentEnum:
		return e
	}
	return LocalEnvironmentEnum
}

// GetYaml config file of the selected environment
func GetYaml() string {
	return "conf/conf_" + string(SystemEnvironmentEnum) + ".yaml"
}
