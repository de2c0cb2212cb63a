// Package casefile loads and watches the YAML case files read by
// `dtc estimate --case`.
//
// A case file holds one observation under `case:` and optional engine
// settings under `options:`:
//
//	case:
//	  height: 170
//	  body_type: 2        # 1 thin | 2 normal | 3 overweight | 4 obese
//	  sex: 1              # 1 male | 2 female (default 1)
//	  age: 30
//	  env_temp: 20
//	  clothing: 3         # 1 none .. 5 heavy
//	  rectal_temp: 30     # optional
//	  rigor_mortis: 2     # optional, 0-6
//	  livor_mortis: 1     # optional, 0-5 (needs livor_pressure)
//	  livor_pressure: 1   # optional, 0-4
//	  location:           # optional, feeds the humidity estimate
//	    region: 广东
//	    month: 7
//	    weather: 小雨      # English or Chinese label
//	options:
//	  locale: zh          # en | zh
//	  decay_form: continuous
//	  fixed_location: false
//
// Load(path) reads the file, applies defaults, normalises weather labels and
// validates the observation against the input ranges of the case form.
// Watch(ctx, path, onChange) re-runs Load whenever the file changes.
package casefile
