//go:build realsense

// Package realsense binds the librealsense2 C API to the device interfaces.
package realsense

/*
#cgo LDFLAGS: -lrealsense2
#include <stdlib.h>
#include <librealsense2/rs.h>
#include <librealsense2/h/rs_pipeline.h>
#include <librealsense2/h/rs_frame.h>
#include <librealsense2/h/rs_sensor.h>
#include <librealsense2/h/rs_config.h>
*/
import "C"

import (
	"context"
	"fmt"
	"unsafe"

	"photoboard-go/internal/device"
	"photoboard-go/internal/types"
)

const pollTimeoutMs = 100

func init() {
	device.Register("realsense", func(device.Options) (device.Context, error) {
		return NewContext()
	})
}

// check converts a pending rs2_error into a CallError and frees it.
func check(e *C.rs2_error) error {
	if e == nil {
		return nil
	}
	defer C.rs2_free_error(e)
	return &device.CallError{
		Func:    C.GoString(C.rs2_get_failed_function(e)),
		Args:    C.GoString(C.rs2_get_failed_args(e)),
		Message: C.GoString(C.rs2_get_error_message(e)),
	}
}

func streamOf(s types.Stream) (C.rs2_stream, C.int) {
	switch s {
	case types.StreamDepth:
		return C.RS2_STREAM_DEPTH, 0
	case types.StreamColor:
		return C.RS2_STREAM_COLOR, 0
	case types.StreamInfrared:
		return C.RS2_STREAM_INFRARED, 1
	case types.StreamInfrared2:
		return C.RS2_STREAM_INFRARED, 2
	default:
		return C.RS2_STREAM_FISHEYE, 0
	}
}

func fromStream(rs C.rs2_stream, index C.int) (types.Stream, bool) {
	switch rs {
	case C.RS2_STREAM_DEPTH:
		return types.StreamDepth, true
	case C.RS2_STREAM_COLOR:
		return types.StreamColor, true
	case C.RS2_STREAM_INFRARED:
		if index == 2 {
			return types.StreamInfrared2, true
		}
		return types.StreamInfrared, true
	case C.RS2_STREAM_FISHEYE:
		return types.StreamFisheye, true
	}
	return 0, false
}

func formatOf(f types.Format) C.rs2_format {
	switch f {
	case types.FormatZ16:
		return C.RS2_FORMAT_Z16
	case types.FormatRGB8:
		return C.RS2_FORMAT_RGB8
	case types.FormatY8:
		return C.RS2_FORMAT_Y8
	default:
		return C.RS2_FORMAT_ANY
	}
}

type Context struct {
	ctx  *C.rs2_context
	list *C.rs2_device_list
}

func NewContext() (*Context, error) {
	var e *C.rs2_error
	ctx := C.rs2_create_context(C.RS2_API_VERSION, &e)
	if err := check(e); err != nil {
		return nil, err
	}
	list := C.rs2_query_devices(ctx, &e)
	if err := check(e); err != nil {
		C.rs2_delete_context(ctx)
		return nil, err
	}
	return &Context{ctx: ctx, list: list}, nil
}

func (c *Context) DeviceCount() (int, error) {
	var e *C.rs2_error
	n := C.rs2_get_device_count(c.list, &e)
	return int(n), check(e)
}

func (c *Context) Device(index int) (device.Device, error) {
	var e *C.rs2_error
	dev := C.rs2_create_device(c.list, C.int(index), &e)
	if err := check(e); err != nil {
		return nil, err
	}
	pipe := C.rs2_create_pipeline(c.ctx, &e)
	if err := check(e); err != nil {
		C.rs2_delete_device(dev)
		return nil, err
	}
	cfg := C.rs2_create_config(&e)
	if err := check(e); err != nil {
		C.rs2_delete_pipeline(pipe)
		C.rs2_delete_device(dev)
		return nil, err
	}
	d := &Device{dev: dev, pipe: pipe, cfg: cfg}
	info, err := d.Info()
	if err != nil {
		d.release()
		return nil, err
	}
	serial := C.CString(info.Serial)
	defer C.free(unsafe.Pointer(serial))
	C.rs2_config_enable_device(cfg, serial, &e)
	if err := check(e); err != nil {
		d.release()
		return nil, err
	}
	return d, nil
}

func (c *Context) Close() error {
	C.rs2_delete_device_list(c.list)
	C.rs2_delete_context(c.ctx)
	return nil
}

type Device struct {
	dev     *C.rs2_device
	pipe    *C.rs2_pipeline
	cfg     *C.rs2_config
	profile *C.rs2_pipeline_profile
	seq     uint64
}

func (d *Device) info(field C.rs2_camera_info) (string, error) {
	var e *C.rs2_error
	v := C.rs2_get_device_info(d.dev, field, &e)
	if err := check(e); err != nil {
		return "", err
	}
	return C.GoString(v), nil
}

func (d *Device) Info() (device.Info, error) {
	var (
		info device.Info
		err  error
	)
	if info.Name, err = d.info(C.RS2_CAMERA_INFO_NAME); err != nil {
		return info, err
	}
	if info.Serial, err = d.info(C.RS2_CAMERA_INFO_SERIAL_NUMBER); err != nil {
		return info, err
	}
	info.FirmwareVersion, err = d.info(C.RS2_CAMERA_INFO_FIRMWARE_VERSION)
	return info, err
}

// eachSensor calls fn for every sensor until it returns false or fails.
func (d *Device) eachSensor(fn func(*C.rs2_sensor) (bool, error)) error {
	var e *C.rs2_error
	list := C.rs2_query_sensors(d.dev, &e)
	if err := check(e); err != nil {
		return err
	}
	defer C.rs2_delete_sensor_list(list)
	n := C.rs2_get_sensors_count(list, &e)
	if err := check(e); err != nil {
		return err
	}
	for i := C.int(0); i < n; i++ {
		sensor := C.rs2_create_sensor(list, i, &e)
		if err := check(e); err != nil {
			return err
		}
		more, err := fn(sensor)
		C.rs2_delete_sensor(sensor)
		if err != nil || !more {
			return err
		}
	}
	return nil
}

func (d *Device) Supports(s types.Stream) (bool, error) {
	want, wantIndex := streamOf(s)
	found := false
	err := d.eachSensor(func(sensor *C.rs2_sensor) (bool, error) {
		var e *C.rs2_error
		list := C.rs2_get_stream_profiles(sensor, &e)
		if err := check(e); err != nil {
			return false, err
		}
		defer C.rs2_delete_stream_profiles_list(list)
		n := C.rs2_get_stream_profiles_count(list, &e)
		if err := check(e); err != nil {
			return false, err
		}
		for i := C.int(0); i < n; i++ {
			p := C.rs2_get_stream_profile(list, i, &e)
			if err := check(e); err != nil {
				return false, err
			}
			var (
				stream              C.rs2_stream
				format              C.rs2_format
				index, uid, framert C.int
			)
			C.rs2_get_stream_profile_data(p, &stream, &format, &index, &uid, &framert, &e)
			if err := check(e); err != nil {
				return false, err
			}
			if stream == want && (wantIndex == 0 || index == wantIndex) {
				found = true
				return false, nil
			}
		}
		return true, nil
	})
	return found, err
}

func (d *Device) EnableStream(cfg device.StreamConfig) error {
	var e *C.rs2_error
	stream, index := streamOf(cfg.Stream)
	C.rs2_config_enable_stream(d.cfg, stream, index,
		C.int(cfg.Width), C.int(cfg.Height), formatOf(cfg.Format), C.int(cfg.FPS), &e)
	return check(e)
}

func (d *Device) Start() error {
	var e *C.rs2_error
	d.profile = C.rs2_pipeline_start_with_config(d.pipe, d.cfg, &e)
	return check(e)
}

func (d *Device) Stop() error {
	var e *C.rs2_error
	C.rs2_pipeline_stop(d.pipe, &e)
	err := check(e)
	if d.profile != nil {
		C.rs2_delete_pipeline_profile(d.profile)
		d.profile = nil
	}
	d.release()
	return err
}

func (d *Device) release() {
	if d.cfg != nil {
		C.rs2_delete_config(d.cfg)
		d.cfg = nil
	}
	if d.pipe != nil {
		C.rs2_delete_pipeline(d.pipe)
		d.pipe = nil
	}
	if d.dev != nil {
		C.rs2_delete_device(d.dev)
		d.dev = nil
	}
}

func (d *Device) DepthScale() (float64, error) {
	scale := 0.0
	found := false
	err := d.eachSensor(func(sensor *C.rs2_sensor) (bool, error) {
		var e *C.rs2_error
		ok := C.rs2_is_sensor_extendable_to(sensor, C.RS2_EXTENSION_DEPTH_SENSOR, &e)
		if err := check(e); err != nil {
			return false, err
		}
		if ok == 0 {
			return true, nil
		}
		scale = float64(C.rs2_get_depth_scale(sensor, &e))
		found = true
		return false, check(e)
	})
	if err == nil && !found {
		err = &device.CallError{Func: "rs2_get_depth_scale", Message: "device has no depth sensor"}
	}
	return scale, err
}

func (d *Device) Intrinsics(s types.Stream) (types.Intrinsics, error) {
	if d.profile == nil {
		return types.Intrinsics{}, &device.CallError{Func: "rs2_pipeline_profile_get_streams", Message: "device not started"}
	}
	want, wantIndex := streamOf(s)
	var e *C.rs2_error
	list := C.rs2_pipeline_profile_get_streams(d.profile, &e)
	if err := check(e); err != nil {
		return types.Intrinsics{}, err
	}
	defer C.rs2_delete_stream_profiles_list(list)
	n := C.rs2_get_stream_profiles_count(list, &e)
	if err := check(e); err != nil {
		return types.Intrinsics{}, err
	}
	for i := C.int(0); i < n; i++ {
		p := C.rs2_get_stream_profile(list, i, &e)
		if err := check(e); err != nil {
			return types.Intrinsics{}, err
		}
		var (
			stream              C.rs2_stream
			format              C.rs2_format
			index, uid, framert C.int
		)
		C.rs2_get_stream_profile_data(p, &stream, &format, &index, &uid, &framert, &e)
		if err := check(e); err != nil {
			return types.Intrinsics{}, err
		}
		if stream != want || (wantIndex != 0 && index != wantIndex) {
			continue
		}
		var w, h C.int
		C.rs2_get_video_stream_resolution(p, &w, &h, &e)
		if err := check(e); err != nil {
			return types.Intrinsics{}, err
		}
		return types.Intrinsics{Width: int(w), Height: int(h)}, nil
	}
	return types.Intrinsics{}, &device.CallError{
		Func:    "rs2_pipeline_profile_get_streams",
		Args:    s.String(),
		Message: "stream not active",
	}
}

// WaitForFrames polls the pipeline so cancellation is noticed between
// attempts. The device itself imposes no timeout.
func (d *Device) WaitForFrames(ctx context.Context) (*device.FrameSet, error) {
	var composite *C.rs2_frame
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var e *C.rs2_error
		got := C.rs2_pipeline_try_wait_for_frames(d.pipe, &composite, pollTimeoutMs, &e)
		if err := check(e); err != nil {
			return nil, err
		}
		if got != 0 {
			break
		}
	}
	defer C.rs2_release_frame(composite)

	var e *C.rs2_error
	n := C.rs2_embedded_frames_count(composite, &e)
	if err := check(e); err != nil {
		return nil, err
	}
	frames := make(map[types.Stream][]byte, int(n))
	for i := C.int(0); i < n; i++ {
		f := C.rs2_extract_frame(composite, i, &e)
		if err := check(e); err != nil {
			return nil, err
		}
		s, data, err := copyFrame(f)
		C.rs2_release_frame(f)
		if err != nil {
			return nil, err
		}
		if s >= 0 {
			frames[s] = data
		}
	}
	d.seq++
	return device.NewFrameSet(d.seq, frames), nil
}

// copyFrame returns the frame's stream and a Go-owned copy of its pixels.
// Streams the board does not know about report -1.
func copyFrame(f *C.rs2_frame) (types.Stream, []byte, error) {
	var e *C.rs2_error
	p := C.rs2_get_frame_stream_profile(f, &e)
	if err := check(e); err != nil {
		return -1, nil, err
	}
	var (
		stream              C.rs2_stream
		format              C.rs2_format
		index, uid, framert C.int
	)
	C.rs2_get_stream_profile_data(p, &stream, &format, &index, &uid, &framert, &e)
	if err := check(e); err != nil {
		return -1, nil, err
	}
	s, ok := fromStream(stream, index)
	if !ok {
		return -1, nil, nil
	}
	size := C.rs2_get_frame_data_size(f, &e)
	if err := check(e); err != nil {
		return -1, nil, err
	}
	ptr := C.rs2_get_frame_data(f, &e)
	if err := check(e); err != nil {
		return -1, nil, err
	}
	if size < 0 {
		return -1, nil, &device.CallError{Func: "rs2_get_frame_data_size", Message: fmt.Sprintf("negative size %d", int(size))}
	}
	return s, C.GoBytes(ptr, size), nil
}
