// Package config loads the maskd service configuration.
//
// The service reads a TOML file:
//
//	listen = ":8090"
//	log_level = "debug"
//	catalog = "catalog.yaml"
//
//	[gateway]
//	url = "http://annotation.internal:5000"
//	timeout = "30s"
//
//	[canvas]
//	width = 512
//	height = 512
//	thickness = 20
//	max_size = 4096
//
// and a YAML image catalog listing the instances a local store knows:
//
//	images:
//	  - image_id: 3
//	    page: 1
//	    middle_slice: 5
//	    bounding_box: [0, 8, 10, 74, 20, 84]
package config
