// Package configx builds layered configuration on top of viper.
//
//	cfg, err := configx.NewBuilder().
//		WithDefaults(map[string]any{"bind": map[string]any{"use": map[string]any{"number": false}}}).
//		FromEnv("DTOX_").
//		Build()
//
//	useNumber := cfg.Get("bind.use.number").AsBool()
//
// Environment variables are mapped by stripping the prefix, lower-casing and
// turning underscores into dots: DTOX_BIND_MAX_BODY becomes bind.max.body.
package configx
