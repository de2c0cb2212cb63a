// Package config loads the estimation server configuration from YAML.
//
// Config fields:
//   - Server.HTTPPort        port for the REST API (default 8080)
//   - Server.Auth.Mode       "apikey" or "none"
//   - Server.Auth.KeyEnv     environment variable holding the expected API key
//   - Server.Auth.Header     HTTP header name (default "x-api-key")
//   - Server.Cache.TTL       how long an identical request is answered from cache (default 10m)
//   - Estimate.Locale        warning language, en or zh
//   - Estimate.DecayForm     phase-2 cooling curve, continuous or literal
//   - Estimate.FixedLocation always use the default humidity context
//   - Log.Level              debug, info, warn or error (default info)
//
// Load(path) applies defaults before unmarshalling, then validates.
// Watch(ctx, path, fn) re-runs Load on every write and passes each valid
// config to fn.
package config
