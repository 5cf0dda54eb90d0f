package attention

import "github.com/teslashibe/go-vigil/pkg/landmark"

const eyeWidth = 0.1

// placeEye writes a synthetic eye with the requested EAR and an iris offset
// (as a fraction of the eye half-width) into s.
func placeEye(s landmark.Set, eye landmark.EyeIndices, iris landmark.IrisIndices, cx, cy, ear, irisDX float64) {
	h := ear * (eyeWidth + earEpsilon)
	w := eyeWidth

	s[eye[0]] = landmark.Pt(cx-w/2, cy)
	s[eye[3]] = landmark.Pt(cx+w/2, cy)
	s[eye[1]] = landmark.Pt(cx-w/6, cy-h/2)
	s[eye[5]] = landmark.Pt(cx-w/6, cy+h/2)
	s[eye[2]] = landmark.Pt(cx+w/6, cy-h/2)
	s[eye[4]] = landmark.Pt(cx+w/6, cy+h/2)

	ix := cx + irisDX*w/2
	r := 0.01
	s[iris[0]] = landmark.Pt(ix+r, cy)
	s[iris[1]] = landmark.Pt(ix, cy-r)
	s[iris[2]] = landmark.Pt(ix-r, cy)
	s[iris[3]] = landmark.Pt(ix, cy+r)
}

// face builds a full Face Mesh set with both eyes at the given EAR and both
// irises shifted by irisDX.
func face(ear, irisDX float64) landmark.Set {
	s := make(landmark.Set, landmark.FaceMeshV1.Points)
	for i := range s {
		s[i] = landmark.Pt(0.5, 0.5)
	}
	placeEye(s, landmark.LeftEye, landmark.LeftIris, 0.35, 0.4, ear, irisDX)
	placeEye(s, landmark.RightEye, landmark.RightIris, 0.65, 0.4, ear, irisDX)
	return s
}
