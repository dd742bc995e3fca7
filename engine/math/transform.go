package math

func TransformFromPosition(position Vec3) *Transform {
	return TransformFromPositionRotationScale(position, NewVec3Zero(), NewVec3One())
}

func TransformFromPositionRotationScale(position Vec3, rotation Vec3, scale Vec3) *Transform {
	t := &Transform{}
	t.SetPositionRotationScale(position, rotation, scale)
	t.Local = NewMat4Identity()
	t.Parent = nil
	return t
}

func (t *Transform) SetPositionRotationScale(position Vec3, rotation Vec3, scale Vec3) {
	t.Position = position
	t.EulerRotation = rotation
	t.Scale = scale
	t.IsDirty = true
}

// GetLocal returns scale, then rotation, then translation applied to a point.
func (t *Transform) GetLocal() Mat4 {
	if t != nil {
		if t.IsDirty {
			s := NewMat4Scale(t.Scale)
			r := NewMat4EulerXYZ(t.EulerRotation.X, t.EulerRotation.Y, t.EulerRotation.Z)
			t.Local = s.Mul(r).Mul(NewMat4Translation(t.Position))
			t.IsDirty = false
		}
		return t.Local
	}
	return NewMat4Identity()
}

func (t *Transform) GetWorld() Mat4 {
	if t != nil {
		l := t.GetLocal()
		if t.Parent != nil {
			p := t.Parent.GetWorld()
			return l.Mul(p)
		}
		return l
	}
	return NewMat4Identity()
}
